package email

import (
	"embed"
	"fmt"
	"strings"
)

//go:embed templates/*.html
var verifyTemplates embed.FS

// Subjects of the verification email per supported locale.
var verifySubjects = map[string]string{
	"en-US": "Verify your Lipoic account",
	"zh-CN": "验证您的 Lipoic 账户",
	"zh-TW": "驗證您的 Lipoic 帳號",
}

// NewVerifyEmail renders the account-verification message for the given
// locale. The template placeholders ${clientURL}, ${code} and ${username}
// are substituted literally, matching the static HTML assets.
func NewVerifyEmail(username, sendTo, code, locale, clientURL string) (SendEmailParams, error) {
	subject, ok := verifySubjects[locale]
	if !ok {
		return SendEmailParams{}, fmt.Errorf("%w: %q", ErrUnknownTemplate, locale)
	}

	raw, err := verifyTemplates.ReadFile("templates/" + locale + ".html")
	if err != nil {
		return SendEmailParams{}, fmt.Errorf("%w: %q", ErrUnknownTemplate, locale)
	}

	body := strings.NewReplacer(
		"${clientURL}", clientURL,
		"${code}", code,
		"${username}", username,
	).Replace(string(raw))

	return SendEmailParams{
		SendTo:   sendTo,
		Subject:  subject,
		BodyHTML: body,
		Tag:      "verify-email",
	}, nil
}
