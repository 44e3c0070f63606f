package reconciler

import (
	"encoding/binary"
	"hash"
	"strconv"

	"github.com/google/uuid"
	"github.com/spaolacci/murmur3"

	"github.com/agentstation/eventlink/pkg/grouping"
)

// runNamespace scopes run IDs so they never collide with other SHA-1 UUIDs.
var runNamespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("https://github.com/agentstation/eventlink/runs"))

// fingerprint derives a run ID from everything that determines the output:
// the strategy, the groups, the alias table, the lookup join settings and
// every input cell. Equal inputs give equal IDs. The worker count is left
// out because output does not depend on it.
func fingerprint(input Input, opts *options, strategy Strategy, groups []grouping.Group) string {
	h := murmur3.New128()

	write(h, strategy.String())
	for _, g := range groups {
		write(h, g.Code, g.Label)
	}

	write(h, "a", strconv.FormatBool(opts.aliases.CaseSensitive()))
	for k, canonical := range opts.aliases.Entries() {
		write(h, k, canonical)
	}

	link := opts.link
	write(h, "l", link.JoinKey, strconv.FormatBool(link.Trim), strconv.FormatBool(link.Fold), string(link.Policy))
	write(h, link.Required...)

	for _, o := range input.Outreach {
		write(h, "o", o.ID, o.Timestamp, o.GroupKey, o.OfficerLabel, o.SubjectName, o.Occupation, o.Email)
	}
	for _, e := range input.Events {
		write(h, "e", e.ID, e.Timestamp, e.GroupKey, e.EventName, e.Location, e.HostOfficer, e.Audience, e.RequestType)
	}
	for _, t := range input.Lookups {
		write(h, "t", t.Name)
		write(h, t.Columns...)
		for _, row := range t.Rows {
			write(h, row...)
		}
	}

	return uuid.NewSHA1(runNamespace, h.Sum(nil)).String()
}

// write hashes length-prefixed values so adjacent fields cannot run together.
func write(h hash.Hash, values ...string) {
	var buf [binary.MaxVarintLen64]byte
	n := binary.PutUvarint(buf[:], uint64(len(values)))
	_, _ = h.Write(buf[:n])
	for _, v := range values {
		n = binary.PutUvarint(buf[:], uint64(len(v)))
		_, _ = h.Write(buf[:n])
		_, _ = h.Write([]byte(v))
	}
}
