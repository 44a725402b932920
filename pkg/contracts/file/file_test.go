package file

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/edvalho/recipelint/pkg/contracts"
	"github.com/edvalho/recipelint/pkg/models"
)

func writeContract(t *testing.T, root, provider, name, content string) {
	t.Helper()

	dir := filepath.Join(root, provider)
	require.NoError(t, os.MkdirAll(dir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, name+".json"), []byte(content), 0o644))
}

func TestSource_Lookup(t *testing.T) {
	root := t.TempDir()
	writeContract(t, root, "salesforce", "new_record", `{
		"output": [
			{"name": "id", "type": "string"},
			{"name": "amount", "type": "number"}
		]
	}`)

	source := NewSource(root)
	ctx := context.Background()

	contract, err := source.Lookup(ctx, "salesforce", "new_record")
	require.NoError(t, err)

	assert.Equal(t, "salesforce", contract.Provider, "provider defaults from the lookup key")
	assert.Equal(t, "new_record", contract.Name)
	require.Len(t, contract.Output, 2)
	assert.Equal(t, models.FieldTypeString, contract.Output[0].Type)
}

func TestSource_LookupMissing(t *testing.T) {
	source := NewSource(t.TempDir())

	_, err := source.Lookup(context.Background(), "salesforce", "does_not_exist")
	assert.ErrorIs(t, err, contracts.ErrUnavailable)
}

func TestSource_LookupCorrupt(t *testing.T) {
	root := t.TempDir()
	writeContract(t, root, "salesforce", "broken", "{not json")

	source := NewSource(root)

	_, err := source.Lookup(context.Background(), "salesforce", "broken")
	assert.ErrorIs(t, err, contracts.ErrUnavailable)
}

func TestSource_FileURLPrefix(t *testing.T) {
	root := t.TempDir()
	writeContract(t, root, "shopify", "create_order", `{"input": [{"name": "total", "type": "number"}]}`)

	source := NewSource("file://" + root)

	contract, err := source.Lookup(context.Background(), "shopify", "create_order")
	require.NoError(t, err)
	assert.Equal(t, "create_order", contract.Name)
}

func TestSource_HealthCheck(t *testing.T) {
	assert.NoError(t, NewSource(t.TempDir()).HealthCheck(context.Background()))
	assert.Error(t, NewSource("/does/not/exist").HealthCheck(context.Background()))
}
