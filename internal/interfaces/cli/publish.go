package cli

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/turtacn/keyip-citation-network/internal/infrastructure/messaging/kafka"
	"github.com/turtacn/keyip-citation-network/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/keyip-citation-network/pkg/errors"
)

// PublishResult is the output of publish.
type PublishResult struct {
	EventID  string `json:"event_id"`
	Topic    string `json:"topic"`
	PatentID string `json:"patent_id"`
}

func newPublishCmd() *cobra.Command {
	var (
		title  string
		source string
		topic  string
	)

	cmd := &cobra.Command{
		Use:   "publish <patent-id>",
		Short: "Announce an ingested patent to the warm-up worker",
		Long: "Publish a patent.ingested event so the worker pre-builds the patent's\n" +
			"citation network into the shared result store.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cliCtx, err := GetCLIContext(cmd)
			if err != nil {
				return err
			}
			patentID := strings.TrimSpace(args[0])
			if patentID == "" {
				return errors.New(errors.ErrCodePatentNumberInvalid, "patent id must not be blank")
			}
			if topic == "" {
				topic = cliCtx.Config.Kafka.Topic
			}

			publisher := cliCtx.publisher
			if publisher == nil {
				producer, err := kafka.NewProducer(kafka.ProducerConfig{Brokers: cliCtx.Config.Kafka.Brokers}, cliCtx.Logger)
				if err != nil {
					return err
				}
				defer producer.Close()
				publisher = producer
			}

			env, err := kafka.NewEventEnvelope(kafka.EventTypePatentIngest, source, kafka.PatentIngestedPayload{
				PatentID:   patentID,
				Title:      title,
				Source:     source,
				IngestedAt: time.Now().UTC(),
			})
			if err != nil {
				return err
			}
			msg, err := env.ToMessage(topic, patentID)
			if err != nil {
				return err
			}

			ctx, cancel := cliCtx.withTimeout(cmd.Context())
			defer cancel()
			if err := publisher.Publish(ctx, msg); err != nil {
				return err
			}
			cliCtx.Logger.Info("ingest event published",
				logging.PatentID(patentID),
				logging.String("topic", topic),
				logging.String("event_id", env.EventID),
			)

			result := PublishResult{EventID: env.EventID, Topic: topic, PatentID: patentID}
			return PrintResult(cmd, result, func(cmd *cobra.Command) error {
				PrintSuccess(cmd, fmt.Sprintf("published %s to %s (event %s)", patentID, topic, env.EventID))
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&title, "title", "", "patent title carried in the event")
	cmd.Flags().StringVar(&source, "source", "citenet-cli", "name of the ingesting system")
	cmd.Flags().StringVar(&topic, "topic", "", "target topic (default: kafka.topic)")
	return cmd
}

//Personal.AI order the ending
