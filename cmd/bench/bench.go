package bench

import (
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-viper/mapstructure/v2"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sage/fpromise"
	"github.com/sage/fpromise/pkg/promise"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

type Config struct {
	Producers   int           `mapstructure:"producers"`
	Items       int           `mapstructure:"items"`
	QueueMax    int           `mapstructure:"queue-max"`
	FunnelMax   int           `mapstructure:"funnel-max"`
	WorkTime    time.Duration `mapstructure:"work-time"`
	MetricsAddr string        `mapstructure:"metrics-addr"`
}

func (c *Config) String() string {
	return fmt.Sprintf(
		"Config(producers=%d, items=%d, qmax=%d, fmax=%d, work=%s)",
		c.Producers,
		c.Items,
		c.QueueMax,
		c.FunnelMax,
		c.WorkTime,
	)
}

type item struct {
	id       string
	producer int
}

func NewCmd() *cobra.Command {
	vip := viper.New()

	cmd := &cobra.Command{
		Use:   "bench",
		Short: "Run a fiber workload through a queue and a funnel",
		RunE: func(cmd *cobra.Command, args []string) error {
			var cfg Config

			hooks := mapstructure.ComposeDecodeHookFunc(
				mapstructure.StringToTimeDurationHookFunc(),
			)
			if err := vip.Unmarshal(&cfg, viper.DecodeHook(hooks)); err != nil {
				return err
			}

			return run(&cfg)
		},
	}

	cmd.Flags().Int("producers", 4, "number of producer fibers")
	cmd.Flags().Int("items", 100, "items produced per producer")
	cmd.Flags().Int("queue-max", 16, "queue capacity, 0 for unbounded")
	cmd.Flags().Int("funnel-max", 8, "concurrent workers, -1 for unrestricted")
	cmd.Flags().Duration("work-time", time.Millisecond, "simulated work per item")
	cmd.Flags().String("metrics-addr", "", "serve prometheus metrics on this address")

	_ = vip.BindPFlags(cmd.Flags())

	return cmd
}

func run(cfg *Config) error {
	slog.Info("bench start", "config", cfg)

	if cfg.MetricsAddr != "" {
		go func() {
			if err := http.ListenAndServe(cfg.MetricsAddr, promhttp.Handler()); err != nil {
				slog.Error("metrics server failed", "err", err)
			}
		}()
	}

	queue := fpromise.NewQueue[item](cfg.QueueMax)
	funnel := fpromise.NewFunnel(cfg.FunnelMax)
	start := time.Now()

	producers := make([]*promise.Promise[int], cfg.Producers)
	for i := range producers {
		producer := i
		producers[i] = fpromise.Run(func() (int, error) {
			for j := 0; j < cfg.Items; j++ {
				it := item{id: uuid.New().String(), producer: producer}
				if err := queue.Write(it); err != nil {
					return j, err
				}
			}
			return cfg.Items, nil
		})
	}

	// end the stream once every producer is done
	fpromise.Run(func() (any, error) {
		for _, p := range producers {
			if _, err := fpromise.Wait[int](p); err != nil {
				return nil, err
			}
		}
		queue.End()
		return nil, nil
	})

	consumer := fpromise.Run(func() (int, error) {
		var workers []*promise.Promise[string]

		for {
			it, ok, err := queue.Read()
			if err != nil {
				return 0, err
			}
			if !ok {
				break
			}

			workers = append(workers, fpromise.Run(func() (string, error) {
				return fpromise.Gate(funnel, func() (string, error) {
					if err := fpromise.Sleep(cfg.WorkTime); err != nil {
						return "", err
					}
					slog.Debug("processed", "id", it.id, "producer", it.producer)
					return it.id, nil
				})
			}))
		}

		for _, w := range workers {
			if _, err := fpromise.Wait[string](w); err != nil {
				return 0, err
			}
		}
		return len(workers), nil
	})

	processed, err := consumer.Await()
	if err != nil {
		return err
	}

	slog.Info("bench complete", "processed", processed, "elapsed", time.Since(start))
	return nil
}
