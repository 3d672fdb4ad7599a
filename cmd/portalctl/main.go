// portalctl is a terminal client for the onboarding portal. It keeps one
// login session on disk and answers from the mock dataset whenever the
// remote API cannot be reached.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/joho/godotenv"

	appLogger "github.com/vanshjaggi/PIXs-Onboarding-Platform/app/logger"
	"github.com/vanshjaggi/PIXs-Onboarding-Platform/config"
	"github.com/vanshjaggi/PIXs-Onboarding-Platform/internal/gate"
	"github.com/vanshjaggi/PIXs-Onboarding-Platform/internal/portal"
	"github.com/vanshjaggi/PIXs-Onboarding-Platform/internal/session"
	"github.com/vanshjaggi/PIXs-Onboarding-Platform/internal/types"
)

const usage = `Usage: portalctl <command> [flags]

Commands:
  login            -email -password -role    authenticate and store the session
  logout                                     end the session
  whoami                                     show the stored session
  reset-password   -email                    request a password reset
  route            <path>                    show what the portal renders for a path
  users                                      list accounts (hr)
  create-user      -email -name -role [-password]
                                             provision an account (hr)
  delete-user      <id>                      remove an account (hr)
  requests         [-user <id>]              list signing requests
  request          <id>                      show one signing request
  create-request   -title -description -employee <id> -doc <file> [-expires <rfc3339>]
                                             create a signature request (hr)
  delete-request   <id>                      remove a pending request (hr)
  sign             <id>                      sign a pending request
  complete-profile -name -phone -address -id-proof <file>
                                             finish first-login onboarding
  update-profile   [-name] [-phone] [-address]
                                             edit the stored profile
`

type app struct {
	cfg    config.Config
	logger *slog.Logger
	store  *session.Store
	repo   portal.Repository

	sess *session.Session
}

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found or error loading:", err)
	}

	cfg, err := config.InitConfig()
	if err != nil {
		log.Fatalf("FATAL: Error initializing config: %v", err)
	}
	logger := appLogger.Setup(cfg.Mode)
	slog.SetDefault(logger)

	a := &app{cfg: cfg, logger: logger}
	a.store = session.NewStore(cfg.Portal.SessionFile, logger)

	a.sess, err = a.store.Restore()
	if err != nil {
		logger.Error("Failed to restore session", slog.Any("error", err))
		os.Exit(1)
	}

	mock := portal.NewMockRepository()
	if cfg.Portal.RemoteEnabled {
		remote := portal.NewRemoteRepository(cfg.Portal.BaseURL, cfg.Portal.Timeout, a.currentToken, logger)
		a.repo = portal.NewFallbackRepository(remote, mock, cfg.Portal.CacheTTL, nil, logger)
	} else {
		a.repo = mock
	}

	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Portal.Timeout+5*time.Second)
	defer cancel()

	var cmdErr error
	switch os.Args[1] {
	case "login":
		cmdErr = a.login(ctx, os.Args[2:])
	case "logout":
		cmdErr = a.logout(ctx)
	case "whoami":
		cmdErr = a.whoami()
	case "reset-password":
		cmdErr = a.resetPassword(ctx, os.Args[2:])
	case "route":
		cmdErr = a.route(os.Args[2:])
	case "users":
		cmdErr = a.listUsers(ctx)
	case "create-user":
		cmdErr = a.createUser(ctx, os.Args[2:])
	case "delete-user":
		cmdErr = a.deleteUser(ctx, os.Args[2:])
	case "requests":
		cmdErr = a.listRequests(ctx, os.Args[2:])
	case "request":
		cmdErr = a.getRequest(ctx, os.Args[2:])
	case "create-request":
		cmdErr = a.createRequest(ctx, os.Args[2:])
	case "delete-request":
		cmdErr = a.deleteRequest(ctx, os.Args[2:])
	case "sign":
		cmdErr = a.signRequest(ctx, os.Args[2:])
	case "complete-profile":
		cmdErr = a.completeProfile(ctx, os.Args[2:])
	case "update-profile":
		cmdErr = a.updateProfile(ctx, os.Args[2:])
	default:
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}

	if cmdErr != nil {
		fmt.Fprintln(os.Stderr, "Error:", cmdErr)
		os.Exit(1)
	}
}

func (a *app) currentToken() string {
	if a.sess == nil {
		return ""
	}
	return a.sess.AuthToken
}

func (a *app) login(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("login", flag.ExitOnError)
	email := fs.String("email", "", "account email")
	password := fs.String("password", "", "account password")
	role := fs.String("role", "employee", "portal to log into: employee or hr")
	_ = fs.Parse(args)

	if *email == "" || *password == "" || !types.Role(*role).Valid() {
		return fmt.Errorf("email, password and a valid role are required")
	}

	resp, err := a.repo.Login(ctx, *email, *password, types.Role(*role))
	if err != nil {
		return err
	}
	if !resp.Success {
		fmt.Println(resp.Message)
		os.Exit(1)
	}

	if err := a.store.Commit(session.Session{AuthToken: resp.Token, User: resp.User}); err != nil {
		return err
	}
	a.sess = &session.Session{AuthToken: resp.Token, User: resp.User}
	fmt.Printf("Logged in as %s (%s)\n", resp.User.Name, resp.User.Role)
	if resp.User.Role == types.RoleEmployee && !resp.User.HasCompletedFirstLogin {
		fmt.Println("Complete your profile with: portalctl complete-profile")
	}
	return nil
}

func (a *app) logout(ctx context.Context) error {
	// Clear the local session no matter what the server answers.
	_ = a.repo.Logout(ctx)
	if err := a.store.Clear(); err != nil {
		return err
	}
	a.sess = nil
	fmt.Println("Logged out")
	return nil
}

func (a *app) whoami() error {
	if a.sess == nil || a.sess.User == nil {
		fmt.Println("Not logged in")
		return nil
	}
	u := a.sess.User
	fmt.Printf("%s <%s> role=%s profile-complete=%t\n", u.Name, u.Email, u.Role, u.HasCompletedFirstLogin)
	return nil
}

func (a *app) resetPassword(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("reset-password", flag.ExitOnError)
	email := fs.String("email", "", "account email")
	_ = fs.Parse(args)
	if *email == "" {
		return fmt.Errorf("email is required")
	}

	resp, err := a.repo.ResetPassword(ctx, *email)
	if err != nil {
		return err
	}
	fmt.Println(resp.Message)
	return nil
}

func (a *app) route(args []string) error {
	if len(args) < 1 {
		return fmt.Errorf("usage: portalctl route <path>")
	}
	path := args[0]

	state := gate.State{}
	if a.sess != nil {
		state.Identity = a.sess.User
	}
	fmt.Println(gate.EvaluatePath(state, path))
	return nil
}

func (a *app) listUsers(ctx context.Context) error {
	users, err := a.repo.ListUsers(ctx)
	if err != nil {
		return err
	}
	for _, u := range users {
		fmt.Printf("%s  %-25s %-8s %s\n", u.ID, u.Email, u.Role, u.Name)
	}
	return nil
}

func (a *app) createUser(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("create-user", flag.ExitOnError)
	email := fs.String("email", "", "account email")
	name := fs.String("name", "", "full name")
	role := fs.String("role", "employee", "account role: employee or hr")
	password := fs.String("password", "", "initial password (defaults to the onboarding default)")
	_ = fs.Parse(args)

	if *email == "" || *name == "" || !types.Role(*role).Valid() {
		return fmt.Errorf("email, name and a valid role are required")
	}

	user, err := a.repo.CreateUser(ctx, types.CreateUserParams{
		Email:    *email,
		Name:     *name,
		Role:     types.Role(*role),
		Password: *password,
	})
	if err != nil {
		return err
	}
	fmt.Printf("Created %s (%s) id=%s\n", user.Name, user.Role, user.ID)
	return nil
}

func (a *app) deleteUser(ctx context.Context, args []string) error {
	if len(args) < 1 {
		return fmt.Errorf("usage: portalctl delete-user <id>")
	}
	id, err := uuid.Parse(args[0])
	if err != nil {
		return fmt.Errorf("invalid user id: %w", err)
	}
	if err := a.repo.DeleteUser(ctx, id); err != nil {
		return err
	}
	fmt.Println("Deleted", id)
	return nil
}

func (a *app) listRequests(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("requests", flag.ExitOnError)
	userFilter := fs.String("user", "", "filter by employee id")
	_ = fs.Parse(args)

	var filter *uuid.UUID
	if *userFilter != "" {
		id, err := uuid.Parse(*userFilter)
		if err != nil {
			return fmt.Errorf("invalid -user id: %w", err)
		}
		filter = &id
	}

	requests, err := a.repo.ListRequests(ctx, filter)
	if err != nil {
		return err
	}
	now := time.Now()
	for _, req := range requests {
		fmt.Printf("%s  %-10s %-35s %s\n", req.ID, req.EffectiveStatus(now), req.Title, req.EmployeeName)
	}
	return nil
}

func (a *app) getRequest(ctx context.Context, args []string) error {
	if len(args) < 1 {
		return fmt.Errorf("usage: portalctl request <id>")
	}
	id, err := uuid.Parse(args[0])
	if err != nil {
		return fmt.Errorf("invalid request id: %w", err)
	}

	req, err := a.repo.GetRequest(ctx, id)
	if err != nil {
		return err
	}
	now := time.Now()
	fmt.Printf("%s\n%s\nStatus: %s  Employee: %s <%s>  Expires: %s\n",
		req.Title, req.Description, req.EffectiveStatus(now),
		req.EmployeeName, req.EmployeeEmail, req.ExpiresAt.Format(time.RFC3339))
	if req.SignedAt != nil {
		fmt.Printf("Signed: %s\n", req.SignedAt.Format(time.RFC3339))
	}
	for _, doc := range req.Documents {
		fmt.Printf("  - %s (%s, %d bytes)\n", doc.Name, doc.Type, doc.Size)
	}
	return nil
}

func (a *app) createRequest(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("create-request", flag.ExitOnError)
	title := fs.String("title", "", "request title")
	description := fs.String("description", "", "request description")
	employee := fs.String("employee", "", "target employee id")
	docPath := fs.String("doc", "", "path to the document to sign (pdf, doc or docx)")
	expires := fs.String("expires", "", "signing deadline, RFC 3339 (default thirty days out)")
	_ = fs.Parse(args)

	if *title == "" || *description == "" || *employee == "" || *docPath == "" {
		return fmt.Errorf("title, description, employee and doc are required")
	}
	employeeID, err := uuid.Parse(*employee)
	if err != nil {
		return fmt.Errorf("invalid employee id: %w", err)
	}

	params := types.CreateRequestParams{
		Title:       *title,
		Description: *description,
		EmployeeID:  employeeID,
	}
	if *expires != "" {
		expiresAt, err := time.Parse(time.RFC3339, *expires)
		if err != nil {
			return fmt.Errorf("invalid -expires: %w", err)
		}
		params.ExpiresAt = expiresAt
	}

	file, err := os.Open(*docPath)
	if err != nil {
		return fmt.Errorf("open document: %w", err)
	}
	defer file.Close()
	info, err := file.Stat()
	if err != nil {
		return fmt.Errorf("stat document: %w", err)
	}
	params.Documents = []types.FileUpload{{
		Name:        filepath.Base(*docPath),
		ContentType: documentContentType(*docPath),
		Size:        info.Size(),
		Reader:      file,
	}}

	created, err := a.repo.CreateRequest(ctx, params)
	if err != nil {
		return err
	}
	fmt.Printf("Created %q for %s id=%s\n", created.Title, created.EmployeeName, created.ID)
	return nil
}

func (a *app) deleteRequest(ctx context.Context, args []string) error {
	if len(args) < 1 {
		return fmt.Errorf("usage: portalctl delete-request <id>")
	}
	id, err := uuid.Parse(args[0])
	if err != nil {
		return fmt.Errorf("invalid request id: %w", err)
	}
	if err := a.repo.DeleteRequest(ctx, id); err != nil {
		return err
	}
	fmt.Println("Deleted", id)
	return nil
}

func (a *app) signRequest(ctx context.Context, args []string) error {
	if len(args) < 1 {
		return fmt.Errorf("usage: portalctl sign <id>")
	}
	id, err := uuid.Parse(args[0])
	if err != nil {
		return fmt.Errorf("invalid request id: %w", err)
	}

	req, err := a.repo.SignRequest(ctx, id)
	if err != nil {
		return err
	}
	fmt.Printf("Signed %q at %s\n", req.Title, req.SignedAt.Format(time.RFC3339))
	return nil
}

func (a *app) completeProfile(ctx context.Context, args []string) error {
	if a.sess == nil || a.sess.User == nil {
		return fmt.Errorf("log in first")
	}

	fs := flag.NewFlagSet("complete-profile", flag.ExitOnError)
	name := fs.String("name", "", "full name")
	phone := fs.String("phone", "", "phone number")
	address := fs.String("address", "", "postal address")
	idProofPath := fs.String("id-proof", "", "path to an id document (pdf, jpg or png)")
	_ = fs.Parse(args)

	// All four fields are mandatory; nothing is submitted until they are
	// all present.
	if *name == "" || *phone == "" || *address == "" || *idProofPath == "" {
		return fmt.Errorf("name, phone, address and id-proof are all required")
	}

	file, err := os.Open(*idProofPath)
	if err != nil {
		return fmt.Errorf("open id proof: %w", err)
	}
	defer file.Close()
	info, err := file.Stat()
	if err != nil {
		return fmt.Errorf("stat id proof: %w", err)
	}

	data := types.FirstLoginData{
		Name:    *name,
		Phone:   *phone,
		Address: *address,
		IDProof: &types.FileUpload{
			Name:        filepath.Base(*idProofPath),
			ContentType: idProofContentType(*idProofPath),
			Size:        info.Size(),
			Reader:      file,
		},
	}

	user, err := a.repo.CompleteFirstLogin(ctx, a.sess.User.ID, data)
	if err != nil {
		return err
	}
	a.store.Patch(*user)
	fmt.Println("Profile completed. Welcome aboard!")
	return nil
}

func (a *app) updateProfile(ctx context.Context, args []string) error {
	if a.sess == nil || a.sess.User == nil {
		return fmt.Errorf("log in first")
	}

	fs := flag.NewFlagSet("update-profile", flag.ExitOnError)
	name := fs.String("name", "", "full name")
	phone := fs.String("phone", "", "phone number")
	address := fs.String("address", "", "postal address")
	_ = fs.Parse(args)

	var params types.UpdateUserParams
	if *name != "" {
		params.Name = name
	}
	if *phone != "" {
		params.Phone = phone
	}
	if *address != "" {
		params.Address = address
	}
	if params.Name == nil && params.Phone == nil && params.Address == nil {
		return fmt.Errorf("pass at least one of -name, -phone, -address")
	}

	// Edits survive a backend failure: they are merged into the stored
	// session either way, so nothing the user typed is lost.
	user, err := portal.UpdateProfile(ctx, a.repo, a.store, *a.sess.User, params)
	if err != nil {
		a.logger.Warn("Profile update not confirmed by the server", slog.Any("error", err))
		fmt.Println("Could not reach the server; your edits were saved locally.")
	} else {
		fmt.Println("Profile updated")
	}
	a.sess.User = user
	return nil
}

func documentContentType(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".pdf":
		return "application/pdf"
	case ".doc":
		return "application/msword"
	case ".docx":
		return "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
	}
	return "application/octet-stream"
}

func idProofContentType(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".pdf":
		return "application/pdf"
	case ".jpg", ".jpeg":
		return "image/jpeg"
	case ".png":
		return "image/png"
	}
	return "application/octet-stream"
}
