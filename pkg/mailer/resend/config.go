package resend

// Config holds Resend provider settings.
type Config struct {
	APIKey      string
	SenderEmail string
	SenderName  string
}
