package cli

import (
	"context"
	"fmt"

	"quizmaster/internal/badge"
	"quizmaster/internal/config"
	redisstore "quizmaster/internal/infra/redis"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
)

// NewBadgesCmd prints the persisted badge history.
func NewBadgesCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "badges",
		Short: "List earned badges",
		RunE: func(cmd *cobra.Command, args []string) error {
			return printBadges(cmd.Context(), *configPath)
		},
	}
}

func printBadges(ctx context.Context, configPath string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	if cfg.Redis.Addr == "" {
		return fmt.Errorf("redis not configured; badges are only persisted with a redis backend")
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	ledger := badge.NewLedger(redisstore.NewKVStore(client))
	if err := ledger.Load(ctx); err != nil {
		return err
	}

	history := ledger.History()
	if len(history) == 0 {
		fmt.Println("No badges earned yet.")
		return nil
	}
	catalog := badge.DefaultCatalog()
	for _, rec := range history {
		icon := ""
		if m, ok := catalog.ByID(rec.MilestoneID); ok {
			icon = m.Icon + " "
		}
		fmt.Printf("%s%s — earned at %d streak on %s\n",
			icon, rec.Title, rec.Streak, rec.ClaimedAt.Format("2006-01-02"))
	}
	return nil
}
