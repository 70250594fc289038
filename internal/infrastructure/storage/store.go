package storage

import (
	"context"
	"encoding/json"
	"time"

	"github.com/turtacn/casefolio/internal/domain/portfolio"
	"github.com/turtacn/casefolio/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/casefolio/internal/infrastructure/monitoring/prometheus"
)

// Store reads and writes the portfolio record under a single key. Neither
// Load nor Save reports failure to the caller: storage problems are logged
// and counted, and the in-memory record stays authoritative.
type Store struct {
	backend Backend
	key     string
	logger  logging.Logger
	metrics *prometheus.AppMetrics
}

func NewStore(backend Backend, key string, log logging.Logger, metrics *prometheus.AppMetrics) *Store {
	if metrics == nil {
		metrics = prometheus.NewNopAppMetrics()
	}
	if log == nil {
		log = logging.NewNopLogger()
	}
	return &Store{backend: backend, key: key, logger: log, metrics: metrics}
}

func (s *Store) Backend() Backend { return s.backend }

func (s *Store) Key() string { return s.key }

// storedRecord defers decoding of each field so one bad field does not
// discard the others.
type storedRecord struct {
	Items  json.RawMessage `json:"items"`
	Prices json.RawMessage `json:"prices"`
	Meta   json.RawMessage `json:"meta"`
}

// Load returns the persisted record. A missing or unreadable blob yields the
// default record; a missing or malformed field falls back to its default.
func (s *Store) Load(ctx context.Context) portfolio.Record {
	start := time.Now()
	data, err := s.backend.Get(ctx, s.key)
	if err != nil {
		if IsNotFound(err) {
			prometheus.RecordStorageOperation(s.metrics, s.backend.Name(), "load", nil)
			s.logger.Debug("No stored portfolio, starting empty", logging.String("key", s.key))
			return portfolio.NewRecord()
		}
		prometheus.RecordStorageOperation(s.metrics, s.backend.Name(), "load", err)
		s.logger.Error("Failed to load portfolio, starting empty",
			logging.String("backend", s.backend.Name()),
			logging.String("key", s.key),
			logging.Err(err),
		)
		return portfolio.NewRecord()
	}
	prometheus.RecordStorageOperation(s.metrics, s.backend.Name(), "load", nil)

	rec := decodeRecord(data, s.logger)
	logging.LogOperationDuration(s.logger, "storage.load", start,
		logging.String("backend", s.backend.Name()),
		logging.Int("items", len(rec.Items)),
	)
	return rec
}

func decodeRecord(data []byte, log logging.Logger) portfolio.Record {
	rec := portfolio.NewRecord()

	var raw storedRecord
	if err := json.Unmarshal(data, &raw); err != nil {
		log.Warn("Stored portfolio is not valid JSON, starting empty", logging.Err(err))
		return rec
	}

	if len(raw.Items) > 0 {
		var items map[string]portfolio.Holding
		if err := json.Unmarshal(raw.Items, &items); err != nil {
			log.Warn("Discarding malformed stored items", logging.Err(err))
		} else if items != nil {
			rec.Items = items
		}
	}
	if len(raw.Prices) > 0 {
		var prices map[string]int64
		if err := json.Unmarshal(raw.Prices, &prices); err != nil {
			log.Warn("Discarding malformed stored prices", logging.Err(err))
		} else if prices != nil {
			rec.Prices = prices
		}
	}
	if len(raw.Meta) > 0 {
		var meta portfolio.Meta
		if err := json.Unmarshal(raw.Meta, &meta); err != nil {
			log.Warn("Discarding malformed stored meta", logging.Err(err))
		} else {
			rec.Meta = meta
		}
	}
	return portfolio.Normalize(rec)
}

// Save writes the whole record. Failures are logged and counted only.
func (s *Store) Save(ctx context.Context, rec portfolio.Record) {
	data, err := json.Marshal(portfolio.Normalize(rec))
	if err == nil {
		err = s.backend.Put(ctx, s.key, data)
	}
	prometheus.RecordStorageOperation(s.metrics, s.backend.Name(), "save", err)
	if err != nil {
		s.logger.Error("Failed to save portfolio",
			logging.String("backend", s.backend.Name()),
			logging.String("key", s.key),
			logging.Err(err),
		)
	}
}

// Ping reports backend health.
func (s *Store) Ping(ctx context.Context) error {
	return s.backend.Ping(ctx)
}

func (s *Store) Close() error {
	return s.backend.Close()
}

//Personal.AI order the ending
