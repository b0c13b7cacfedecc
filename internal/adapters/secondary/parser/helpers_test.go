package parser

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/fredcamaral/slidemark/internal/domain/entities"
	"github.com/fredcamaral/slidemark/internal/domain/ports"
)

func buildDoc(t *testing.T, src string) *Document {
	t.Helper()
	doc, err := NewGoldmarkBuilder(entities.AllExtensions).Build(context.Background(), []byte(src))
	require.NoError(t, err)
	return doc
}

func parse(t *testing.T, src string) *ports.ParseResult {
	t.Helper()
	return parseWith(t, DefaultOptions(), src)
}

func parseWith(t *testing.T, opts Options, src string) *ports.ParseResult {
	t.Helper()
	result, err := NewPresentationParser(opts).Parse(context.Background(), []byte(src))
	require.NoError(t, err)
	require.NotNil(t, result.Presentation)
	return result
}
