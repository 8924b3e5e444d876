package mailer

import (
	"bytes"
	"html/template"

	"github.com/samber/oops"
)

// Notification kinds, also used as metric labels.
const (
	KindWelcome = "welcome"
	KindReset   = "reset"
)

var welcomeTmpl = template.Must(template.New(KindWelcome).Parse(`<!DOCTYPE html>
<html>
<body style="font-family: Arial, sans-serif; color: #222;">
  <h2>Welcome to DevCode, {{.UserName}}!</h2>
  <p>Your account is ready. Open the editor, write some HTML, CSS and JavaScript, and save your projects to pick them up from any device.</p>
  <p>Happy coding,<br>The DevCode team</p>
</body>
</html>`))

var resetTmpl = template.Must(template.New(KindReset).Parse(`<!DOCTYPE html>
<html>
<body style="font-family: Arial, sans-serif; color: #222;">
  <h2>Reset your DevCode password</h2>
  <p>Hi {{.UserName}}, we received a request to reset your password.</p>
  <p><a href="{{.Link}}">Reset password</a></p>
  <p>This link is valid for 10 min. If you did not ask for a reset you can ignore this e-mail.</p>
</body>
</html>`))

// WelcomeMessage renders the post-registration greeting.
func WelcomeMessage(to, userName string) (Message, error) {
	body, err := render(welcomeTmpl, map[string]string{"UserName": userName})
	if err != nil {
		return Message{}, err
	}
	return Message{To: to, Subject: "Welcome to DevCode", HTMLBody: body}, nil
}

// ResetMessage renders the password reset e-mail carrying link.
func ResetMessage(to, userName, link string) (Message, error) {
	body, err := render(resetTmpl, map[string]string{"UserName": userName, "Link": link})
	if err != nil {
		return Message{}, err
	}
	return Message{To: to, Subject: "DevCode password reset", HTMLBody: body}, nil
}

func render(t *template.Template, data any) (string, error) {
	var buf bytes.Buffer
	if err := t.Execute(&buf, data); err != nil {
		return "", oops.With("template", t.Name()).Wrap(err)
	}
	return buf.String(), nil
}
