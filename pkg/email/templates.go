package email

import (
	"bytes"
	"text/template"
)

// CredentialsData fills the welcome mail sent when a client login is provisioned.
type CredentialsData struct {
	Name     string
	Username string
	Password string
	LoginURL string
}

// PasswordResetData fills the mail sent for a forgotten password.
type PasswordResetData struct {
	Name     string
	Username string
	Password string
	LoginURL string
}

var (
	credentialsTmpl = template.Must(template.New("credentials").Parse(`Dear {{.Name}},

Your client account has been created.

Username: {{.Username}}
Password: {{.Password}}

Sign in at {{.LoginURL}} and change your password after the first login.
`))

	passwordResetTmpl = template.Must(template.New("password-reset").Parse(`Dear {{.Name}},

A new temporary password was requested for your account.

Username: {{.Username}}
Temporary password: {{.Password}}

Sign in at {{.LoginURL}} and choose a new password. If you did not request this, contact support.
`))
)

func CredentialsMessage(to string, data CredentialsData) (Message, error) {
	body, err := execute(credentialsTmpl, data)
	if err != nil {
		return Message{}, err
	}
	return Message{To: to, Subject: "Your Client Account Credentials", Body: body}, nil
}

func PasswordResetMessage(to string, data PasswordResetData) (Message, error) {
	if data.Name == "" {
		data.Name = GreetingName(to)
	}
	body, err := execute(passwordResetTmpl, data)
	if err != nil {
		return Message{}, err
	}
	return Message{To: to, Subject: "Your Temporary Password", Body: body}, nil
}

func execute(t *template.Template, data any) (string, error) {
	var b bytes.Buffer
	if err := t.Execute(&b, data); err != nil {
		return "", err
	}
	return b.String(), nil
}
