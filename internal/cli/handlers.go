package cli

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/vinarium/carta/internal/airtable"
	"github.com/vinarium/carta/internal/carta"
	"github.com/vinarium/carta/internal/config"
	"github.com/vinarium/carta/internal/publish"
	"github.com/vinarium/carta/pkg/logger"
	"github.com/vinarium/carta/pkg/render"
)

func runGenerate(ctx context.Context, opts *GenerateOptions) error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return err
	}
	client := airtable.NewClient(cfg.APIKey, cfg.BaseID)

	venueRec, err := client.GetRecord(ctx, cfg.VenuesTable, opts.VenueID)
	if err != nil {
		return fmt.Errorf("load venue %s: %w", opts.VenueID, err)
	}
	venue := carta.VenueFromRecord(venueRec)

	view := opts.View
	if view == "" {
		view = cfg.View
	}
	raw, err := client.ListAllRecords(ctx, cfg.WinesTable, airtable.ListOptions{
		FilterByFormula: airtable.And(
			airtable.IsTrue("In Carta"),
			airtable.LinkedRecordContains("Enoteca", opts.VenueID),
		),
		View:   view,
		Fields: carta.FieldWhitelist,
	})
	if err != nil {
		return fmt.Errorf("fetch wines: %w", err)
	}

	cleaned := carta.Clean(&airtable.ListResponse{Records: raw})
	zones, err := carta.ResolveZones(ctx, client, cfg.ZonesTable)
	if err != nil {
		return err
	}
	sorted := carta.Sort(cleaned, zones)

	producers := &carta.RemoteProducerResolver{Client: client, Table: cfg.ProducersTable}
	result := carta.Validate(ctx, sorted, zones, producers)

	logger.Infof("classified %d records for %q: %d valid, %d warnings, %d invalid",
		len(sorted), venue.Name, len(result.Valid), len(result.Warnings), len(result.Invalid))
	for _, inv := range result.Invalid {
		logger.Warnf("record %s excluded, missing: %v", inv.ID, inv.InvalidFields)
	}
	for _, warn := range result.Warnings {
		logger.Warnf("record %s incomplete, missing: %v", warn.ID, warn.WarningFields)
	}

	doc := carta.Assemble(result.Valid, venue)

	out := opts.Output
	if out == "" {
		out = render.ArtifactName(time.Now(), venue.Name, "yaml")
	}
	f, err := os.Create(out)
	if err != nil {
		return fmt.Errorf("create output file: %w", err)
	}
	defer f.Close()

	if err := doc.EncodeYAML(f); err != nil {
		return fmt.Errorf("serialize document: %w", err)
	}
	logger.Infof("wrote document %s (%d sections, %d categories)", out, len(doc.Wines), len(doc.Categories))
	return nil
}

func runPublish(ctx context.Context, opts *PublishOptions) error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return err
	}
	client := airtable.NewClient(cfg.APIKey, cfg.BaseID)
	publisher := publish.NewPublisher(client)

	date := opts.Date
	if date == "" {
		date = time.Now().Format("2006-01-02")
	}

	published, err := publisher.Publish(ctx, publish.Request{
		Table:           opts.Table,
		VenueID:         opts.VenueID,
		Date:            date,
		AttachmentField: opts.Field,
		Source:          opts.Source,
		Filename:        opts.Filename,
	})
	if err != nil {
		return err
	}

	logger.Infof("published %q (%d bytes) as record %s", published.Filename, published.Size, published.RecordID)
	return nil
}
