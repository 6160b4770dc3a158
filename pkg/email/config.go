package email

// Config holds email service configuration. The Postmark tokens are optional
// to support development environments where email sending is disabled; in
// that case a DevSender should be wired instead of the Postmark client.
type Config struct {
	PostmarkServerToken  string `env:"POSTMARK_SERVER_TOKEN"`
	PostmarkAccountToken string `env:"POSTMARK_ACCOUNT_TOKEN"`
	SenderEmail          string `env:"VERIFY_EMAIL_FROM" envDefault:"Lipoic Account <contact@lipoic.org>"`
	SupportEmail         string `env:"SUPPORT_EMAIL" envDefault:"contact@lipoic.org"`
	DevOutputDir         string `env:"EMAIL_DEV_OUTPUT_DIR" envDefault:"./tmp/emails"`
}
