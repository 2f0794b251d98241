package demo

import (
	"context"
	stderrors "errors"
	"net/mail"
	"strings"
	"time"

	"github.com/vango-dev/drizzle/pkg/coerce"
	"github.com/vango-dev/drizzle/pkg/hydrate"
	"github.com/vango-dev/drizzle/pkg/reactive"
	"github.com/vango-dev/drizzle/pkg/vdom"
)

// LoginFormName is the registered name of the login island.
const LoginFormName = "LoginForm"

// ErrInvalidCredentials is returned by the default authenticator.
var ErrInvalidCredentials = stderrors.New("invalid email or password")

// Authenticator checks a set of credentials.
type Authenticator func(ctx context.Context, email, password string) error

// LoginOptions configures the login island.
type LoginOptions struct {
	// Authenticate checks submitted credentials. Defaults to
	// DefaultAuthenticator.
	Authenticate Authenticator

	// Loop, when set, runs Authenticate on its own goroutine and posts the
	// result back to the loop. Without a loop the call is synchronous.
	Loop *reactive.Loop

	// Timeout bounds one authentication attempt. Defaults to 10s.
	Timeout time.Duration
}

// DefaultAuthenticator accepts any well-formed address with a password of
// at least eight characters.
func DefaultAuthenticator(_ context.Context, email, password string) error {
	if _, err := mail.ParseAddress(email); err != nil || len(password) < 8 {
		return ErrInvalidCredentials
	}
	return nil
}

// LoginForm returns the login island. Props: email (prefill), error
// (server-side message shown before hydration).
func LoginForm(opts LoginOptions) hydrate.Component {
	if opts.Authenticate == nil {
		opts.Authenticate = DefaultAuthenticator
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 10 * time.Second
	}
	return hydrate.Component{
		Name:   LoginFormName,
		Render: loginView,
		Data: func(props vdom.Props) reactive.Data {
			return loginData(opts, props)
		},
	}
}

func loginView(props vdom.Props) any {
	email, _ := props["email"].(string)
	message, _ := props["error"].(string)
	messageClass := "form-message"
	if message != "" {
		messageClass += " error"
	}
	return vdom.H("form", vdom.Props{"class": "login-form", "data-submit-prevent": "login"},
		vdom.H("label", vdom.Props{"for": "email"}, "Email address"),
		vdom.H("input", vdom.Props{
			"id":         "email",
			"type":       "email",
			"name":       "email",
			"value":      email,
			"data-model": "email",
		}),
		vdom.H("label", vdom.Props{"for": "password"}, "Password"),
		vdom.H("input", vdom.Props{
			"id":            "password",
			"type":          "password",
			"name":          "password",
			"data-model":    "password",
			"data-required": "!success",
		}),
		vdom.H("div", vdom.Props{
			"class":      messageClass,
			"data-text":  "message",
			"data-class": "{error: error, success: success}",
		}, message),
		vdom.H("button", vdom.Props{"type": "submit", "data-disabled": "loading"},
			vdom.H("span", vdom.Props{"data-text": "buttonText"}, "Sign in")),
	)
}

func loginData(opts LoginOptions, props vdom.Props) reactive.Data {
	email, _ := props["email"].(string)
	message, _ := props["error"].(string)

	return reactive.Data{
		"email":    email,
		"password": "",
		"loading":  false,
		"message":  message,
		"error":    message != "",
		"success":  false,
		"buttonText": reactive.Getter(func(this *reactive.Instance) any {
			if coerce.Truthy(this.Get("loading")) {
				return "Signing in..."
			}
			return "Sign in"
		}),
		"login": reactive.Method(func(this *reactive.Instance, _ ...any) any {
			// A submit while a request is in flight is dropped.
			if coerce.Truthy(this.Peek("loading")) {
				return nil
			}
			email := strings.TrimSpace(coerce.String(this.Peek("email")))
			if email == "" {
				this.Set("error", true)
				this.Set("message", "Email is required")
				return nil
			}
			password := coerce.String(this.Peek("password"))

			this.Set("loading", true)
			this.Set("message", "")
			this.Set("error", false)
			this.Set("success", false)

			finish := func(err error) {
				this.Set("loading", false)
				if err != nil {
					this.Set("error", true)
					this.Set("message", err.Error())
					return
				}
				this.Set("success", true)
				this.Set("password", "")
				this.Set("message", "Welcome back, "+email)
			}

			authenticate := func() error {
				ctx, cancel := context.WithTimeout(context.Background(), opts.Timeout)
				defer cancel()
				return opts.Authenticate(ctx, email, password)
			}
			if opts.Loop == nil {
				finish(authenticate())
				return nil
			}
			go func() {
				err := authenticate()
				opts.Loop.Post(func() { finish(err) })
			}()
			return nil
		}),
	}
}
