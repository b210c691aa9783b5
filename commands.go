package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"gymdesk/db"
	"gymdesk/handlers"
	"gymdesk/middleware"
	"gymdesk/models"
	"gymdesk/services"
)

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API and the reminder scheduler",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			a, err := newApp(ctx)
			if err != nil {
				return err
			}
			defer a.Close()

			if err := db.Migrate(ctx, a.db); err != nil {
				return err
			}
			a.log.Info("database schema verified")

			go services.NewReminderScheduler(a.dispatcher, a.cfg.Notify.Interval, a.log).Start(ctx)

			h := &handlers.Handler{
				Users:      a.users,
				Plans:      a.plans,
				Logs:       a.logs,
				Payments:   a.payments,
				Dispatcher: a.dispatcher,
				Auth:       a.auth,
				Tokens:     a.tokens,
				Gateway:    a.gateway,
				DB:         a.db,
				Features:   a.cfg.Features,
				TokenTTL:   a.cfg.JWTTTL,
				Log:        a.log,
			}
			if a.cfg.Features.MetricsEnabled {
				h.Metrics = promhttp.HandlerFor(a.registry, promhttp.HandlerOpts{})
			}

			gin.SetMode(gin.ReleaseMode)
			r := gin.New()
			r.Use(gin.Recovery(), middleware.RequestLogger(a.log))
			h.RegisterRoutes(r, a.cfg.CORSOrigins)

			srv := &http.Server{
				Addr:              ":" + strconv.Itoa(a.cfg.Port),
				Handler:           r,
				ReadHeaderTimeout: 10 * time.Second,
			}

			errCh := make(chan error, 1)
			go func() {
				a.log.Info("server starting", "port", a.cfg.Port)
				errCh <- srv.ListenAndServe()
			}()

			select {
			case err := <-errCh:
				if !errors.Is(err, http.ErrServerClosed) {
					return err
				}
				return nil
			case <-ctx.Done():
			}

			a.log.Info("shutting down")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		},
	}
}

func notifyCmd() *cobra.Command {
	var channel, message string
	cmd := &cobra.Command{
		Use:   "notify",
		Short: "Send fee reminders to every member with a pending fee",
		Long: `Run one fee reminder dispatch and print the per member results.

Examples:
  gymdesk notify
  gymdesk notify --type SMS --message "Office closes at 8pm today"`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ch, err := models.ParseChannel(channel)
			if err != nil {
				return err
			}

			a, err := newApp(cmd.Context())
			if err != nil {
				return err
			}
			defer a.Close()

			summary, err := a.dispatcher.Run(cmd.Context(), services.DispatchRequest{Type: ch, Note: message})
			if err != nil {
				return err
			}

			data, err := json.MarshalIndent(summary, "", "  ")
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(data))
			return nil
		},
	}

	cmd.Flags().StringVarP(&channel, "type", "t", string(models.ChannelBoth), "channels to use (Email, SMS, Both)")
	cmd.Flags().StringVarP(&message, "message", "m", "", "note appended to every reminder")
	return cmd
}

func migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply the database schema",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd.Context())
			if err != nil {
				return err
			}
			defer a.Close()

			if err := db.Migrate(cmd.Context(), a.db); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Database schema verified")
			return nil
		},
	}
}

func createAdminCmd() *cobra.Command {
	var name, email, phone, password string
	cmd := &cobra.Command{
		Use:   "create-admin",
		Short: "Create an admin account",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd.Context())
			if err != nil {
				return err
			}
			defer a.Close()

			u, _, err := a.auth.Register(cmd.Context(), services.RegisterInput{
				Name:     name,
				Email:    email,
				Phone:    phone,
				Password: password,
				Role:     models.RoleAdmin,
			})
			if err != nil {
				return fmt.Errorf("create admin: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Admin %s created (%s)\n", u.Email, u.ID)
			return nil
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "admin name")
	cmd.Flags().StringVar(&email, "email", "", "admin email")
	cmd.Flags().StringVar(&phone, "phone", "", "10 digit phone number")
	cmd.Flags().StringVar(&password, "password", "", "initial password")
	for _, f := range []string{"name", "email", "phone", "password"} {
		_ = cmd.MarkFlagRequired(f)
	}
	return cmd
}
