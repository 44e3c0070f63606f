package linker

import (
	"encoding/binary"
	"slices"

	"github.com/spaolacci/murmur3"

	"github.com/agentstation/eventlink/pkg/records"
)

// rowSet remembers output rows by their 128-bit murmur3 digest. Rows that
// share a digest are compared in full before being called duplicates.
type rowSet struct {
	buckets map[[2]uint64][][]records.Cell
}

func newRowSet() *rowSet {
	return &rowSet{buckets: make(map[[2]uint64][][]records.Cell)}
}

// add records cells and reports whether they were new.
func (s *rowSet) add(cells []records.Cell) bool {
	sum := digest(cells)
	for _, existing := range s.buckets[sum] {
		if slices.Equal(existing, cells) {
			return false
		}
	}
	s.buckets[sum] = append(s.buckets[sum], cells)
	return true
}

// digest hashes each cell as a validity byte and a length-prefixed value, so
// a null cell and an empty one hash differently.
func digest(cells []records.Cell) [2]uint64 {
	h := murmur3.New128()
	var buf [binary.MaxVarintLen64 + 1]byte
	for _, c := range cells {
		buf[0] = 0
		if c.Valid {
			buf[0] = 1
		}
		n := binary.PutUvarint(buf[1:], uint64(len(c.Value)))
		_, _ = h.Write(buf[:n+1])
		_, _ = h.Write([]byte(c.Value))
	}
	h1, h2 := h.Sum128()
	return [2]uint64{h1, h2}
}
