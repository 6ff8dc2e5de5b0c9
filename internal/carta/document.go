package carta

import (
	"fmt"
	"io"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/vinarium/carta/internal/airtable"
)

// defaultCoverDescription fills the cover when the venue record carries no
// description of its own.
const defaultCoverDescription = "Una selezione di vini scelta con cura, per accompagnare ogni momento."

const categoryNote = "I prezzi si intendono per bottiglia, IVA inclusa."

// VenueInfo is the venue (enoteca) the list is generated for.
type VenueInfo struct {
	ID          string
	Name        string
	Description string
	LogoURL     string
	QRCodeURL   string
	MenuURL     string
}

// VenueFromRecord maps a venue record onto VenueInfo.
func VenueFromRecord(rec *airtable.Record) VenueInfo {
	v := VenueInfo{ID: rec.ID}
	if name := fieldString(rec.Fields, "Nome Enoteca", "Nome"); name != nil {
		v.Name = *name
	}
	v.Description = Extract(rec.Fields["Descrizione"])
	v.LogoURL = AttachmentURL(rec.Fields["Logo"])
	v.QRCodeURL = AttachmentURL(rec.Fields["QR Code"])
	v.MenuURL = Extract(rec.Fields["Menu Digitale"])
	return v
}

// Document is the assembled structure handed to the renderer. Field order
// is the serialization order.
type Document struct {
	Meta       Meta            `yaml:"meta"`
	MainCover  Cover           `yaml:"main_cover"`
	Categories []CategoryEntry `yaml:"categories"`
	Wines      []Section       `yaml:"wines"`
}

type Meta struct {
	ID   string `yaml:"id"`
	Date string `yaml:"date"`
	Ref  string `yaml:"ref"`
}

type Cover struct {
	Title       string `yaml:"title"`
	Description string `yaml:"description"`
	LogoURL     string `yaml:"logo_url,omitempty"`
	QRCodeURL   string `yaml:"qr_code_url,omitempty"`
	MenuURL     string `yaml:"menu_url,omitempty"`
}

type CategoryEntry struct {
	ID       string `yaml:"id"`
	Name     string `yaml:"name"`
	Subtitle string `yaml:"subtitle"`
	Note     string `yaml:"note"`
}

// Section is one (category, region, zone) bucket of the list.
type Section struct {
	Category string `yaml:"category"`
	Region   string `yaml:"region"`
	Zone     string `yaml:"zone"`
	Items    []Item `yaml:"items"`
}

// Item is a wine inside a section. Category, region and zone are lifted to
// the section header and not repeated per item.
type Item struct {
	Name               string   `yaml:"name"`
	Producer           string   `yaml:"producer"`
	PriceEUR           *float64 `yaml:"price_eur"`
	Grapes             string   `yaml:"grapes,omitempty"`
	ProductionLocation string   `yaml:"production_location,omitempty"`
	Aging              string   `yaml:"aging,omitempty"`
	ABV                string   `yaml:"abv,omitempty"`
}

// Assemble builds the document for the current date. Records are expected in
// sorted order; grouping preserves first-seen order at every level, so the
// section order matches the sort order.
func Assemble(valid []WineEntry, venue VenueInfo) *Document {
	return AssembleAt(time.Now(), valid, venue)
}

// AssembleAt is Assemble with an explicit generation date.
func AssembleAt(now time.Time, valid []WineEntry, venue VenueInfo) *Document {
	date := now.Format("2006-01-02")
	ref := date + "_" + venue.ID

	description := venue.Description
	if description == "" {
		description = defaultCoverDescription
	}

	return &Document{
		Meta: Meta{ID: ref, Date: date, Ref: ref},
		MainCover: Cover{
			Title:       venue.Name,
			Description: description,
			LogoURL:     venue.LogoURL,
			QRCodeURL:   venue.QRCodeURL,
			MenuURL:     venue.MenuURL,
		},
		Categories: categoryEntries(valid),
		Wines:      groupSections(valid),
	}
}

func categoryEntries(valid []WineEntry) []CategoryEntry {
	seen := make(map[string]bool)
	var entries []CategoryEntry
	for _, e := range valid {
		if e.Category == "" || seen[e.Category] {
			continue
		}
		seen[e.Category] = true
		entries = append(entries, CategoryEntry{
			ID:       Slugify(e.Category),
			Name:     e.Category,
			Subtitle: fmt.Sprintf("La nostra selezione di %s", e.Category),
			Note:     categoryNote,
		})
	}
	return entries
}

// Slugify turns a category name into its document id.
func Slugify(name string) string {
	return strings.ReplaceAll(strings.ToLower(name), " ", "-")
}

func groupSections(valid []WineEntry) []Section {
	type regionKey struct{ category, region string }
	type zoneKey struct{ category, region, zone string }

	var categoryOrder []string
	regionOrder := make(map[string][]string)
	zoneOrder := make(map[regionKey][]string)
	items := make(map[zoneKey][]Item)

	for _, e := range valid {
		rk := regionKey{e.Category, e.Region}
		zk := zoneKey{e.Category, e.Region, e.Zone}

		if _, ok := regionOrder[e.Category]; !ok {
			categoryOrder = append(categoryOrder, e.Category)
			regionOrder[e.Category] = nil
		}
		if _, ok := zoneOrder[rk]; !ok {
			regionOrder[e.Category] = append(regionOrder[e.Category], e.Region)
			zoneOrder[rk] = nil
		}
		if _, ok := items[zk]; !ok {
			zoneOrder[rk] = append(zoneOrder[rk], e.Zone)
		}
		items[zk] = append(items[zk], Item{
			Name:               e.Name,
			Producer:           e.Producer,
			PriceEUR:           e.PriceEUR,
			Grapes:             e.Grapes,
			ProductionLocation: e.ProductionLocation,
			Aging:              e.Aging,
			ABV:                e.ABV,
		})
	}

	var sections []Section
	for _, category := range categoryOrder {
		for _, region := range regionOrder[category] {
			for _, zone := range zoneOrder[regionKey{category, region}] {
				sections = append(sections, Section{
					Category: category,
					Region:   region,
					Zone:     zone,
					Items:    items[zoneKey{category, region, zone}],
				})
			}
		}
	}
	return sections
}

// EncodeYAML writes the document with two-space indentation and stable key
// order. yaml.v3 keeps struct field order and emits no aliases for acyclic
// values, which is what the renderer expects.
func (d *Document) EncodeYAML(w io.Writer) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(d); err != nil {
		return err
	}
	return enc.Close()
}
