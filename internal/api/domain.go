package api

import (
	"github.com/DigitalProductschool/sir-certificates-sub001/internal/batches"
	"github.com/DigitalProductschool/sir-certificates-sub001/internal/certificates"
	"github.com/DigitalProductschool/sir-certificates-sub001/internal/notify"
	"github.com/DigitalProductschool/sir-certificates-sub001/internal/organisations"
	"github.com/DigitalProductschool/sir-certificates-sub001/internal/preview"
	"github.com/DigitalProductschool/sir-certificates-sub001/internal/programs"
	"github.com/DigitalProductschool/sir-certificates-sub001/internal/render"
	"github.com/DigitalProductschool/sir-certificates-sub001/internal/templates"
	"github.com/DigitalProductschool/sir-certificates-sub001/pkg/mailer/resend"
)

// Domain holds all domain systems that comprise the API.
type Domain struct {
	Organisations organisations.System
	Programs      programs.System
	Templates     templates.System
	Certificates  certificates.System
	Batches       batches.System
	Notify        notify.System
}

// NewDomain creates all domain systems from the API runtime. Systems are
// wired bottom-up: record owners first, then the render pipeline, then the
// orchestration and dispatch layers on top.
func NewDomain(runtime *Runtime) *Domain {
	db := runtime.Database.Connection()

	orgsSystem := organisations.New(db, runtime.Storage, runtime.Logger)
	programsSystem := programs.New(db, runtime.Storage, runtime.Logger)
	templatesSystem := templates.New(db, runtime.Logger)

	previews := preview.NewGenerator(runtime.Storage, runtime.Logger)

	certsSystem := certificates.New(
		db,
		templatesSystem,
		programsSystem,
		orgsSystem,
		previews,
		runtime.Logger,
	)

	renderer := render.New(
		render.NewPDFEngine(runtime.Storage),
		runtime.Render,
		runtime.Logger,
	)

	batchesSystem := batches.New(
		db,
		certsSystem,
		templatesSystem,
		programsSystem,
		renderer,
		runtime.Storage,
		runtime.Batches,
		runtime.Logger,
	)

	sender := resend.New(resend.Config{
		APIKey:      runtime.Notify.APIKey,
		SenderEmail: runtime.Notify.SenderEmail,
		SenderName:  runtime.Notify.SenderName,
	})

	notifySystem := notify.New(
		certsSystem,
		runtime.Storage,
		sender,
		runtime.Notify,
		runtime.Logger,
	)

	return &Domain{
		Organisations: orgsSystem,
		Programs:      programsSystem,
		Templates:     templatesSystem,
		Certificates:  certsSystem,
		Batches:       batchesSystem,
		Notify:        notifySystem,
	}
}
