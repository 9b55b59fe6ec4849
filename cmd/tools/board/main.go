// Renders the current merged view as a terminal table, with the derived
// recommendation per opportunity.
package main

import (
	"context"
	"log"
	"os"

	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/mlebreton/veille-aap/internal/board"
	"github.com/mlebreton/veille-aap/internal/config"
	"github.com/mlebreton/veille-aap/internal/ingest"
	"github.com/mlebreton/veille-aap/internal/overlay"
	"github.com/mlebreton/veille-aap/internal/pipeline"
	"github.com/mlebreton/veille-aap/internal/storage"
)

func main() {
	cfgPath := os.Getenv("VEILLE_CONFIG")
	if cfgPath == "" {
		cfgPath = "config.yaml"
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	slot, err := storage.OpenSQLite(cfg.Storage.Path)
	if err != nil {
		log.Fatalf("Failed to open storage: %v", err)
	}
	defer slot.Close()

	ov := overlay.NewStore(slot, cfg.Storage.Namespace)
	loader := ingest.NewLoader(cfg.Dataset.Candidates, ingest.NewAutoRetriever(""))
	b := board.New(loader, ov)

	if err := b.Reload(context.Background()); err != nil {
		log.Fatalf("Dataset load failed: %v", err)
	}

	t := table.NewWriter()
	t.SetOutputMirror(os.Stdout)
	t.AppendHeader(table.Row{"ID", "Titre", "Type", "Deadline", "Statut", "Reco"})

	for _, e := range b.CurrentMergedView() {
		deadline := e.Opportunity.Deadline
		if deadline == "" {
			deadline = "-"
		}
		t.AppendRow(table.Row{
			e.Opportunity.ID,
			ingest.TruncateText(e.Opportunity.Title, 60),
			e.Opportunity.Type,
			deadline,
			e.Annotation.Status,
			pipeline.Recommend(e.Annotation.Score),
		})
	}
	t.Render()
}
