package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/example/commerce-service/internal/adapter/natsstan"
	"github.com/example/commerce-service/internal/config"
	"github.com/example/commerce-service/internal/domain"
	"github.com/example/commerce-service/internal/logging"
)

func main() {
	if err := publishCommand(os.Stdin).Execute(); err != nil {
		os.Exit(1)
	}
}

// publishCommand читает заявку на заказ (JSON) из in и публикует её в канал приёма заказов.
func publishCommand(in io.Reader) *cobra.Command {
	var kind string
	cmd := &cobra.Command{
		Use:          "publisher",
		Short:        "publish an order request read from stdin to the intake subject",
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			log := logging.New(cfg.LogLevel)

			raw, err := readRequest(in, domain.OrderKind(kind))
			if err != nil {
				log.Error("read order request", "err", err)
				return err
			}

			clientID := os.Getenv("STAN_PUB_ID")
			if clientID == "" {
				clientID = "commerce-publisher"
			}
			sc, err := natsstan.Connect(cfg.Stan.ClusterID, clientID, cfg.Stan.URL)
			if err != nil {
				log.Error("stan connect", "err", err)
				return err
			}
			defer sc.Close()

			if err := sc.Publish(cfg.Stan.IntakeSubject, raw); err != nil {
				log.Error("publish", "err", err)
				return err
			}
			log.Info("published order request", "bytes", len(raw), "subject", cfg.Stan.IntakeSubject)
			return nil
		},
	}
	cmd.Flags().StringVar(&kind, "kind", "", "order kind (sales or purchase) when the payload has none")
	return cmd
}

// readRequest разбирает и проверяет заявку, чтобы не отправлять в очередь заведомо битые сообщения.
func readRequest(in io.Reader, kind domain.OrderKind) ([]byte, error) {
	var req domain.OrderRequest
	dec := json.NewDecoder(in)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		return nil, fmt.Errorf("read json from stdin: %w", err)
	}
	if req.Kind == "" {
		req.Kind = kind
	}
	if err := req.Validate(); err != nil {
		return nil, err
	}
	return json.Marshal(req)
}
