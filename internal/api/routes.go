package api

import (
	"net/http"

	"github.com/DigitalProductschool/sir-certificates-sub001/internal/config"
	"github.com/DigitalProductschool/sir-certificates-sub001/pkg/routes"
)

func registerRoutes(
	mux *http.ServeMux,
	domain *Domain,
	cfg *config.Config,
	runtime *Runtime,
) {
	maxUpload := cfg.API.MaxUploadSizeBytes()

	routes.Register(
		mux,
		domain.Organisations.Handler(maxUpload).Routes(),
		domain.Programs.Handler(maxUpload).Routes(),
		domain.Certificates.Handler().Routes(),
		domain.Batches.Handler().Routes(),
		domain.Notify.Handler().Routes(),
		newStorageHandler(runtime.Storage, runtime.Logger).routes(),
	)
}
