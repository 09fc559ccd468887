package descriptor

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/odvcencio/sigil/pkg/ctor"
	"github.com/odvcencio/sigil/pkg/graph"
	"github.com/odvcencio/sigil/pkg/locate"
	"github.com/odvcencio/sigil/pkg/sig"
)

// Host exposes the constructors a runtime declares for a type directly. It
// is consulted only for types that carry no signature blob.
type Host interface {
	Constructors(id sig.TypeID) ([]graph.Constructor, error)
}

// StaticHost is a Host backed by a fixed table.
type StaticHost map[sig.TypeID][]graph.Constructor

func (h StaticHost) Constructors(id sig.TypeID) ([]graph.Constructor, error) {
	return h[id], nil
}

// Options configures a Describer.
type Options struct {
	Locator locate.Locator
	Host    Host
	Cache   *Cache
	Logger  *slog.Logger
	// Marker is the annotation class that flags the canonical constructor;
	// graph.DefaultMarker when empty.
	Marker sig.TypeID
}

// Describer composes location, decoding, graph building and resolution
// behind a cache.
type Describer struct {
	locator locate.Locator
	host    Host
	cache   *Cache
	logger  *slog.Logger
	marker  sig.TypeID
}

// New returns a Describer. A nil cache is replaced by a fresh one and a nil
// logger discards.
func New(opts Options) *Describer {
	d := &Describer{
		locator: opts.Locator,
		host:    opts.Host,
		cache:   opts.Cache,
		logger:  opts.Logger,
		marker:  opts.Marker,
	}
	if d.cache == nil {
		d.cache = NewCache()
	}
	if d.logger == nil {
		d.logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if d.marker == "" {
		d.marker = graph.DefaultMarker
	}
	return d
}

// Cache returns the cache the describer publishes into.
func (d *Describer) Cache() *Cache { return d.cache }

// Describe returns the descriptor for id, building it on first request.
func (d *Describer) Describe(id sig.TypeID) (*ClassDescriptor, error) {
	return d.cache.GetOrBuild(id, func() (*ClassDescriptor, error) {
		return d.build(id)
	})
}

// Refresh re-locates the blob for id and drops the cached descriptor when
// the blob has changed since it was built. It reports whether it did.
func (d *Describer) Refresh(id sig.TypeID) (bool, error) {
	cached, ok := d.cache.Get(id)
	if !ok {
		return false, nil
	}
	blob, found, err := d.locate(id)
	if err != nil {
		return false, fmt.Errorf("refresh %s: %w", id, err)
	}
	fingerprint := ""
	if found {
		fingerprint = locate.Fingerprint(blob)
	}
	if fingerprint == cached.Fingerprint {
		return false, nil
	}
	d.cache.Invalidate(id)
	d.logger.Info("descriptor invalidated", "type", string(id), "old", short(cached.Fingerprint), "new", short(fingerprint))
	return true, nil
}

func (d *Describer) locate(id sig.TypeID) (sig.Blob, bool, error) {
	if d.locator == nil {
		return nil, false, nil
	}
	return d.locator.Locate(id)
}

func (d *Describer) build(id sig.TypeID) (*ClassDescriptor, error) {
	blob, found, err := d.locate(id)
	if err != nil {
		return nil, fmt.Errorf("describe %s: %w", id, err)
	}
	if !found {
		d.logger.Debug("no signature blob, using host constructors", "type", string(id))
		return d.fromHost(id)
	}
	return d.fromBlob(id, blob)
}

func (d *Describer) fromBlob(id sig.TypeID, blob sig.Blob) (*ClassDescriptor, error) {
	table, err := sig.Decode(blob)
	if err != nil {
		return nil, fmt.Errorf("describe %s: %w", id, err)
	}
	g, err := graph.New(table)
	if err != nil {
		return nil, fmt.Errorf("describe %s: %w", id, err)
	}
	class, err := g.Class(id, graph.ClassOptions{Marker: d.marker})
	if err != nil {
		return nil, fmt.Errorf("describe %s: %w", id, err)
	}

	desc := &ClassDescriptor{
		Type:         id,
		Constructors: class.Constructors,
		Accessors:    make(map[string]string, len(class.Accessors)),
		Fingerprint:  locate.Fingerprint(blob),
		Source:       SourceSignature,
	}
	for _, tp := range class.TypeParams {
		desc.TypeParams = append(desc.TypeParams, tp.Name)
	}
	for name, s := range class.Accessors {
		desc.Accessors[name] = s.Name
	}
	if err := d.resolve(desc); err != nil {
		return nil, err
	}
	d.logger.Debug("described type",
		"type", string(id),
		"source", desc.Source,
		"constructors", len(desc.Constructors),
		"primary", desc.Primary,
		"fingerprint", short(desc.Fingerprint),
	)
	return desc, nil
}

func (d *Describer) fromHost(id sig.TypeID) (*ClassDescriptor, error) {
	var cons []graph.Constructor
	if d.host != nil {
		var err error
		cons, err = d.host.Constructors(id)
		if err != nil {
			return nil, fmt.Errorf("describe %s: host: %w", id, err)
		}
	}
	desc := &ClassDescriptor{
		Type:         id,
		Constructors: cons,
		Source:       SourceHost,
	}
	if err := d.resolve(desc); err != nil {
		return nil, err
	}
	return desc, nil
}

func (d *Describer) resolve(desc *ClassDescriptor) error {
	primary, err := ctor.Resolve(desc.Constructors)
	if err != nil {
		return fmt.Errorf("describe %s: %w", desc.Type, err)
	}
	desc.Primary = primary
	desc.Fields = FieldsOf(desc)
	return nil
}

func short(fingerprint string) string {
	if len(fingerprint) > 12 {
		return fingerprint[:12]
	}
	return fingerprint
}
