package store

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/noah-isme/sma-dashboard-api/internal/models"
	"github.com/noah-isme/sma-dashboard-api/internal/policy"
)

// Query returns the viewer's records of the given type, newest first. The
// second return value reports whether the result came from the cache.
//
// On a miss the collection is reduced in a fixed order: type match, role
// visibility, then each user filter as an exact match (dotted paths reach
// nested fields, empty filter values are ignored). The sort is stable so
// equal timestamps keep their collection order.
func (s *Store) Query(ctx context.Context, identity models.Identity, recordType models.RecordType, filters map[string]string) ([]models.Record, bool, error) {
	start := time.Now()
	key := queryKey(identity, recordType, filters)

	if cached, ok := s.cache.Get(ctx, key); ok {
		if s.metrics != nil {
			s.metrics.ObserveQuery(true, time.Since(start))
		}
		return cached, true, nil
	}

	visible := policy.Visible(identity)

	s.mu.RLock()
	matched := make([]models.Record, 0)
	for _, rec := range s.records {
		if rec.Type() != recordType {
			continue
		}
		if !visible(rec) {
			continue
		}
		ok, err := matchesFilters(rec, filters)
		if err != nil {
			s.mu.RUnlock()
			return nil, false, err
		}
		if ok {
			matched = append(matched, rec)
		}
	}
	s.mu.RUnlock()

	sort.SliceStable(matched, func(i, j int) bool {
		return models.EffectiveTime(matched[i]).After(models.EffectiveTime(matched[j]))
	})

	s.cache.Set(ctx, key, matched)
	if s.metrics != nil {
		s.metrics.ObserveQuery(false, time.Since(start))
	}
	return matched, false, nil
}

// queryKey serializes the query canonically: filters are sorted by name so
// equivalent filter maps share one entry. The viewer is part of the key
// because visibility differs per role and author.
func queryKey(identity models.Identity, recordType models.RecordType, filters map[string]string) string {
	names := make([]string, 0, len(filters))
	for name, value := range filters {
		if value == "" {
			continue
		}
		names = append(names, name)
	}
	sort.Strings(names)

	var b strings.Builder
	b.WriteString(string(identity.Role))
	b.WriteByte('/')
	b.WriteString(identity.DisplayName)
	b.WriteByte('|')
	b.WriteString(string(recordType))
	for _, name := range names {
		b.WriteByte('|')
		b.WriteString(name)
		b.WriteByte('=')
		b.WriteString(filters[name])
	}
	return b.String()
}

// matchesFilters applies every non-empty filter as an exact string match
// against the record's flattened field set.
func matchesFilters(rec models.Record, filters map[string]string) (bool, error) {
	if len(filters) == 0 {
		return true, nil
	}
	fields, err := models.Flatten(rec)
	if err != nil {
		return false, err
	}
	for path, want := range filters {
		if want == "" {
			continue
		}
		value, ok := models.LookupPath(fields, path)
		if !ok {
			return false, nil
		}
		if fmt.Sprintf("%v", value) != want {
			return false, nil
		}
	}
	return true, nil
}
