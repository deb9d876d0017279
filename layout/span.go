package layout

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/tidwall/buntdb"
)

const (
	spanIndexName = "spans"
	spanPrefix    = "track:"
)

// spanIndex keeps the bounding box of every track in an in-memory R-tree, so a point in the
// middle of a track can be resolved without scanning every track.
type spanIndex struct {
	db *buntdb.DB
}

func newSpanIndex() (*spanIndex, error) {
	db, err := buntdb.Open(":memory:")
	if err != nil {
		return nil, err
	}
	err = db.CreateSpatialIndex(spanIndexName, spanPrefix+"*", buntdb.IndexRect)
	if err != nil {
		db.Close()
		return nil, err
	}
	return &spanIndex{db: db}, nil
}

func spanKey(id TrackID) string {
	return spanPrefix + strconv.Itoa(int(id))
}

func spanRect(points []Point) string {
	lo, hi := points[0], points[0]
	for _, p := range points[1:] {
		lo.X, hi.X = min(lo.X, p.X), max(hi.X, p.X)
		lo.Y, hi.Y = min(lo.Y, p.Y), max(hi.Y, p.Y)
	}
	return fmt.Sprintf("[%d %d],[%d %d]", lo.X, lo.Y, hi.X, hi.Y)
}

func (s *spanIndex) insert(id TrackID, points []Point) error {
	return s.db.Update(func(tx *buntdb.Tx) error {
		_, _, err := tx.Set(spanKey(id), spanRect(points), nil)
		return err
	})
}

func (s *spanIndex) remove(id TrackID) error {
	return s.db.Update(func(tx *buntdb.Tx) error {
		_, err := tx.Delete(spanKey(id))
		return err
	})
}

// candidates returns the tracks whose bounding box contains p.
func (s *spanIndex) candidates(p Point) ([]TrackID, error) {
	var ids []TrackID
	err := s.db.View(func(tx *buntdb.Tx) error {
		return tx.Intersects(spanIndexName, fmt.Sprintf("[%d %d]", p.X, p.Y), func(key, _ string) bool {
			id, err := strconv.Atoi(strings.TrimPrefix(key, spanPrefix))
			if err != nil {
				panic(fmt.Sprintf("malformed span key %q", key))
			}
			ids = append(ids, TrackID(id))
			return true
		})
	})
	return ids, err
}

func (s *spanIndex) close() error {
	return s.db.Close()
}
