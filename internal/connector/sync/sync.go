// Package sync walks the Unity Catalog hierarchy and replicates it into a
// destination as normalized records. Every run revisits the full hierarchy;
// the prior state is advisory only. State is checkpointed after each
// completed catalog, so a failed run resumes with at worst one catalog of
// rework.
package sync

import (
	"context"
	gosync "sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/syncflow/syncflow/internal/connector/destination"
	"github.com/syncflow/syncflow/internal/connector/records"
	"github.com/syncflow/syncflow/internal/connector/state"
	"github.com/syncflow/syncflow/internal/connector/unitycatalog"
)

// Source is the slice of the catalog API the walk needs. It is satisfied by
// *unitycatalog.Client.
type Source interface {
	ListCatalogs(ctx context.Context) ([]unitycatalog.CatalogInfo, error)
	ListSchemas(ctx context.Context, catalogName string) ([]unitycatalog.SchemaInfo, error)
	ListTables(ctx context.Context, catalogName, schemaName string) ([]unitycatalog.TableSummary, error)
	GetTable(ctx context.Context, fullName string) (*unitycatalog.TableInfo, error)
	ListVolumes(ctx context.Context, catalogName, schemaName string) (unitycatalog.VolumeListing, error)
}

var _ Source = (*unitycatalog.Client)(nil)

// Options tune one syncer. The zero value syncs every catalog sequentially.
type Options struct {
	// AllowedCatalogs restricts the walk to the named catalogs. Empty means
	// every catalog. Names match verbatim.
	AllowedCatalogs []string
	// TableConcurrency bounds parallel table detail fetches within a schema.
	// Values below 1 run sequentially.
	TableConcurrency int
}

// Syncer drives full sync runs from a source into a destination.
type Syncer struct {
	source Source
	dest   destination.Destination
	opts   Options
}

func New(source Source, dest destination.Destination, opts Options) *Syncer {
	if opts.TableConcurrency < 1 {
		opts.TableConcurrency = 1
	}
	return &Syncer{source: source, dest: dest, opts: opts}
}

// Run executes one full walk of the catalog hierarchy. Listing failures and
// checkpoint failures abort the run; a single table's failure only skips
// that table and its columns. The returned report is valid even on error.
func (s *Syncer) Run(ctx context.Context, prior state.State) (*Report, error) {
	start := time.Now().UTC()
	rep := &Report{StartedAt: start}
	defer func() { rep.FinishedAt = time.Now().UTC() }()

	log.Ctx(ctx).Info().Str("last_sync_time", prior.LastSyncTime).Msg("starting catalog sync")

	catalogs, err := s.source.ListCatalogs(ctx)
	if err != nil {
		return rep, ErrListCatalogs.Err(err)
	}

	st := state.State{LastSyncTime: records.FormatTime(start)}
	for _, cat := range catalogs {
		if err := ctx.Err(); err != nil {
			return rep, ErrCancelled.Err(err)
		}
		if !s.catalogAllowed(cat.Name) {
			log.Ctx(ctx).Debug().Str("catalog", cat.Name).Msg("catalog filtered out")
			continue
		}
		if err := s.syncCatalog(ctx, rep, cat); err != nil {
			return rep, err
		}
		st.CatalogsSynced++
		if err := s.dest.Checkpoint(ctx, st); err != nil {
			return rep, ErrCheckpointFailed.Err(err)
		}
		rep.countCheckpoint()
	}

	log.Ctx(ctx).Info().
		Int("catalogs", rep.Catalogs).
		Int("schemas", rep.Schemas).
		Int("tables", rep.Tables).
		Int("columns", rep.Columns).
		Int("volumes", rep.Volumes).
		Int("failed_tables", len(rep.TableFailures)).
		Dur("elapsed", time.Since(start)).
		Msg("catalog sync complete")
	return rep, nil
}

func (s *Syncer) catalogAllowed(name string) bool {
	if len(s.opts.AllowedCatalogs) == 0 {
		return true
	}
	for _, allowed := range s.opts.AllowedCatalogs {
		if allowed == name {
			return true
		}
	}
	return false
}

func (s *Syncer) syncCatalog(ctx context.Context, rep *Report, cat unitycatalog.CatalogInfo) error {
	ctx = log.Ctx(ctx).With().Str("catalog", cat.Name).Logger().WithContext(ctx)
	if err := s.upsert(ctx, rep, records.MapCatalog(cat)); err != nil {
		return err
	}

	schemas, err := s.source.ListSchemas(ctx, cat.Name)
	if err != nil {
		return ErrListSchemas.Err(err)
	}
	for _, sch := range schemas {
		if err := s.syncSchema(ctx, rep, cat.Name, sch); err != nil {
			return err
		}
	}
	return nil
}

func (s *Syncer) syncSchema(ctx context.Context, rep *Report, catalogName string, sch unitycatalog.SchemaInfo) error {
	ctx = log.Ctx(ctx).With().Str("schema", sch.Name).Logger().WithContext(ctx)
	if err := s.upsert(ctx, rep, records.MapSchema(catalogName, sch)); err != nil {
		return err
	}

	tables, err := s.source.ListTables(ctx, catalogName, sch.Name)
	if err != nil {
		return ErrListTables.Err(err)
	}
	s.syncTables(ctx, rep, catalogName, sch.Name, tables)

	s.syncVolumes(ctx, rep, catalogName, sch.Name)
	return nil
}

// syncTables fetches table details with at most TableConcurrency workers.
// Columns are emitted by the same worker as their table, so each table's
// records stay ordered. A failed table is logged and recorded, never fatal.
func (s *Syncer) syncTables(ctx context.Context, rep *Report, catalogName, schemaName string, tables []unitycatalog.TableSummary) {
	sem := make(chan struct{}, s.opts.TableConcurrency)
	var wg gosync.WaitGroup
	for _, tab := range tables {
		if ctx.Err() != nil {
			break
		}
		wg.Add(1)
		sem <- struct{}{}
		go func(name string) {
			defer wg.Done()
			defer func() { <-sem }()
			fullName := records.TableFullName(catalogName, schemaName, name)
			if err := s.syncTable(ctx, rep, catalogName, schemaName, name); err != nil {
				log.Ctx(ctx).Warn().Err(err).Str("table", fullName).Msg("skipping table")
				rep.addFailure(fullName, err.Error())
			}
		}(tab.Name)
	}
	wg.Wait()
}

func (s *Syncer) syncTable(ctx context.Context, rep *Report, catalogName, schemaName, tableName string) error {
	fullName := records.TableFullName(catalogName, schemaName, tableName)
	detail, err := s.source.GetTable(ctx, fullName)
	if err != nil {
		return err
	}
	if err := s.upsert(ctx, rep, records.MapTable(catalogName, schemaName, tableName, *detail)); err != nil {
		return err
	}
	for idx, col := range detail.Columns {
		if err := s.upsert(ctx, rep, records.MapColumn(fullName, idx, col)); err != nil {
			return err
		}
	}
	return nil
}

// syncVolumes is best effort. A schema without volume support contributes
// nothing; a transient listing or delivery failure is logged and the walk
// moves on.
func (s *Syncer) syncVolumes(ctx context.Context, rep *Report, catalogName, schemaName string) {
	listing, err := s.source.ListVolumes(ctx, catalogName, schemaName)
	if err != nil {
		log.Ctx(ctx).Warn().Err(err).Msg("unable to list volumes, continuing without them")
		return
	}
	if !listing.Supported {
		log.Ctx(ctx).Debug().Msg("volumes endpoint not available")
		return
	}
	for _, vol := range listing.Volumes {
		if err := s.upsert(ctx, rep, records.MapVolume(catalogName, schemaName, vol)); err != nil {
			log.Ctx(ctx).Warn().Err(err).Str("volume", vol.Name).Msg("unable to deliver volume, continuing")
			return
		}
	}
}

func (s *Syncer) upsert(ctx context.Context, rep *Report, rec records.Record) error {
	if err := s.dest.Upsert(ctx, rec); err != nil {
		return err
	}
	rep.countUpsert(rec.Table)
	return nil
}
