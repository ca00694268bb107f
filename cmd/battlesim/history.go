package main

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"

	"github.com/cory-johannsen/redarchon/internal/game/battle"
	"github.com/cory-johannsen/redarchon/internal/storage/postgres"
)

// reportHistory reads a player's stored battle reports.
type reportHistory interface {
	Summarize(ctx context.Context, playerID uuid.UUID) (postgres.Summary, error)
	ListByPlayer(ctx context.Context, playerID uuid.UUID, limit int) ([]battle.Report, error)
}

// printHistory writes the player's lifetime totals followed by up to limit
// of their most recent battles.
//
// Precondition: h must be non-nil; limit must be > 0.
func printHistory(ctx context.Context, w io.Writer, h reportHistory, playerID uuid.UUID, limit int) error {
	sum, err := h.Summarize(ctx, playerID)
	if err != nil {
		return err
	}
	recent, err := h.ListByPlayer(ctx, playerID, limit)
	if err != nil {
		return err
	}

	fmt.Fprintf(w, "history %s: %d battle(s), %d won, %d lost, dealt=%d taken=%d\n",
		playerID, sum.Battles, sum.Victories, sum.Defeats, sum.DamageDealt, sum.DamageTaken)
	for _, rep := range recent {
		fmt.Fprintf(w, "  %-12s %-8s turns=%-3d dealt=%-4d taken=%-4d sim=%s\n",
			rep.EnemyName, rep.Outcome, rep.PlayerTurns, rep.DamageDealt, rep.DamageTaken,
			rep.Elapsed.Round(time.Millisecond))
	}
	return nil
}
