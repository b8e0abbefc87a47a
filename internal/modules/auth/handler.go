package auth

import (
	"bufio"
	"context"
	"strconv"
	"strings"

	"github.com/georgemunganga/stockdesk/internal/apperr"
	"github.com/georgemunganga/stockdesk/internal/console"
	"github.com/georgemunganga/stockdesk/internal/modules/browser"
	"github.com/georgemunganga/stockdesk/internal/modules/navigation"
	"github.com/georgemunganga/stockdesk/internal/modules/session"
)

// Handler exposes the sign-in commands.
type Handler struct {
	service Service
	env     *console.Env
}

func NewHandler(service Service, env *console.Env) *Handler {
	return &Handler{service: service, env: env}
}

func (h *Handler) RegisterCommands(r *console.Router) {
	r.Handle("login", "-email e [-password p] (password is read from input when omitted)", h.login)
	r.Handle("logout", "", h.logout)
	r.Handle("whoami", "", h.whoami)
}

func (h *Handler) login(ctx context.Context, args []string) error {
	fs := h.env.Router.Flags("login")
	email := fs.String("email", "", "operator email")
	password := fs.String("password", "", "password")
	if err := console.Parse(fs, args); err != nil {
		return err
	}
	h.env.Nav.Navigate(navigation.PathLogin)

	if *password == "" && *email != "" {
		h.env.Printer.Printf("Password: ")
		scanner := bufio.NewScanner(h.env.In)
		if scanner.Scan() {
			*password = strings.TrimRight(scanner.Text(), "\r")
		}
		h.env.Printer.Println()
	}

	sess, err := h.service.Login(ctx, *email, *password)
	if err != nil {
		if apperr.Is(err, apperr.Validation) {
			return apperr.ValidationErr("Email and password are required.", nil)
		}
		return err
	}
	h.env.Nav.Navigate(navigation.PathProducts)
	h.env.Printer.Notify(browser.Notification{Severity: browser.SeveritySuccess, Message: "Signed in as " + sess.SubjectEmail + "."})
	return nil
}

func (h *Handler) logout(_ context.Context, _ []string) error {
	h.service.Logout()
	h.env.Nav.Navigate(navigation.PathLogin)
	h.env.Printer.Notify(browser.Notification{Severity: browser.SeverityInfo, Message: "Signed out."})
	return nil
}

func (h *Handler) whoami(_ context.Context, _ []string) error {
	sess, ok := h.service.WhoAmI()
	if !ok {
		return apperr.AuthorityErr("Not signed in.")
	}
	h.env.Printer.Fields(sessionFields(sess))
	return nil
}

func sessionFields(s *session.Session) [][2]string {
	fields := [][2]string{{"Email", s.SubjectEmail}}
	if s.UserID != 0 {
		fields = append(fields, [2]string{"User", strconv.FormatInt(s.UserID, 10)})
	}
	if len(s.Roles) > 0 {
		fields = append(fields, [2]string{"Roles", strings.Join(s.Roles, ", ")})
	}
	fields = append(fields, [2]string{"Expires", s.ExpiresAt.Local().Format("2006-01-02 15:04")})
	return fields
}
