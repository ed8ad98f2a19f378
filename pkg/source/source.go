package source

import (
	"context"
	"log/slog"

	"github.com/aletheon/eleutherios-mvp-sub002/pkg/engine"
	"github.com/aletheon/eleutherios-mvp-sub002/pkg/governance"
)

// Document is one named rule document.
type Document struct {
	// Name is the policy name the document registers under.
	Name string

	// Path locates the document for error reporting.
	Path string

	// Data is the document text.
	Data []byte
}

// Source yields rule documents.
type Source interface {
	// Load returns every document the source currently holds.
	Load(ctx context.Context) ([]Document, error)
}

// Loader registers source documents as policies.
type Loader struct {
	source  Source
	engine  *engine.Engine
	owner   string
	version func() string
	logger  *slog.Logger
}

// NewLoader creates a loader that registers documents as active policies
// owned by owner.
func NewLoader(src Source, eng *engine.Engine, owner string) *Loader {
	return &Loader{
		source: src,
		engine: eng,
		owner:  owner,
		logger: slog.Default().With("component", "source.loader"),
	}
}

// WithVersion sets a resolver for the source revision stamped onto policy
// registration events, such as the git commit the documents were loaded
// from.
func (l *Loader) WithVersion(fn func() string) *Loader {
	l.version = fn
	return l
}

// Sync loads every document and registers it. Documents that fail to
// parse or validate are skipped with a warning so one broken file does
// not block the rest. It returns the number of policies registered.
func (l *Loader) Sync(ctx context.Context) (int, error) {
	docs, err := l.source.Load(ctx)
	if err != nil {
		return 0, err
	}

	var stamp string
	if l.version != nil {
		stamp = l.version()
	}

	var registered int
	for _, doc := range docs {
		_, err := l.engine.RegisterPolicy(ctx, engine.RegisterPolicyRequest{
			Name:         doc.Name,
			OwnerID:      l.owner,
			Visibility:   governance.VisibilityPublic,
			Document:     doc.Data,
			Source:       doc.Path,
			VersionStamp: stamp,
			Activate:     true,
		})
		if err != nil {
			l.logger.Warn("skipping invalid rule document",
				"path", doc.Path,
				"error", err,
			)
			continue
		}
		registered++
	}

	l.logger.Info("policy sync complete",
		"documents", len(docs),
		"registered", registered,
	)
	return registered, nil
}
