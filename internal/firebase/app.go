package firebase

import (
	"context"
	"fmt"

	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/auth"
	"firebase.google.com/go/v4/db"
	"google.golang.org/api/option"
)

// Services agrupa os clientes Firebase usados pelo servidor.
type Services struct {
	App      *firebase.App
	Database *db.Client
	Auth     *auth.Client
}

// NewServices inicializa o app Firebase com Realtime Database e Auth.
func NewServices(ctx context.Context, credentialsPath, databaseURL string) (*Services, error) {
	opt := option.WithCredentialsFile(credentialsPath)
	app, err := firebase.NewApp(ctx, &firebase.Config{DatabaseURL: databaseURL}, opt)
	if err != nil {
		return nil, fmt.Errorf("error initializing Firebase app: %w", err)
	}

	database, err := app.Database(ctx)
	if err != nil {
		return nil, fmt.Errorf("error getting Database client: %w", err)
	}

	authClient, err := app.Auth(ctx)
	if err != nil {
		return nil, fmt.Errorf("error getting Auth client: %w", err)
	}

	return &Services{
		App:      app,
		Database: database,
		Auth:     authClient,
	}, nil
}
