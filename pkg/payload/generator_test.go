package payload

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateTemplateUnsupported(t *testing.T) {
	_, err := GenerateTemplate("widget", nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "widget")
}

func TestGenerateCollection(t *testing.T) {
	code, err := GenerateTemplate("collection", map[string]interface{}{
		"slug": "posts",
		"fields": []interface{}{
			map[string]interface{}{"name": "title", "type": "text", "required": true},
		},
		"access": true,
		"admin": map[string]interface{}{
			"useAsTitle":     "title",
			"defaultColumns": []interface{}{"title", "updatedAt"},
		},
	})
	require.NoError(t, err)

	assert.Contains(t, code, "import { CollectionConfig } from 'payload/types';")
	assert.Contains(t, code, "const Posts: CollectionConfig = {")
	assert.Contains(t, code, "slug: 'posts',")
	assert.Contains(t, code, "useAsTitle: 'title',")
	assert.Contains(t, code, "defaultColumns: ['title', 'updatedAt'],")
	assert.Contains(t, code, "read: () => true,")
	assert.Contains(t, code, "timestamps: true,")
	assert.Contains(t, code, "name: 'title',")
	assert.Contains(t, code, "export default Posts;")
}

func TestGenerateCollectionRequiresSlug(t *testing.T) {
	_, err := GenerateTemplate("collection", map[string]interface{}{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "slug")
}

func TestGenerateCollectionOptionalSections(t *testing.T) {
	code, err := GenerateTemplate("collection", map[string]interface{}{
		"slug":       "sessions",
		"auth":       true,
		"hooks":      true,
		"versions":   true,
		"timestamps": false,
	})
	require.NoError(t, err)

	assert.Contains(t, code, "useAPIKey: true,")
	assert.Contains(t, code, "beforeOperation:")
	assert.Contains(t, code, "drafts: true,")
	assert.NotContains(t, code, "timestamps: true")
}

func TestGenerateFieldPerTypeSpecifics(t *testing.T) {
	tests := []struct {
		fieldType string
		want      string
	}{
		{"text", "maxLength: 255,"},
		{"number", "max: 1000,"},
		{"select", "label: 'Option 1'"},
		{"relationship", "relationTo: 'collection-name',"},
		{"array", "maxRows: 10,"},
		{"blocks", "slug: 'block-name',"},
	}
	for _, tt := range tests {
		t.Run(tt.fieldType, func(t *testing.T) {
			code, err := GenerateTemplate("field", map[string]interface{}{
				"name": "x",
				"type": tt.fieldType,
			})
			require.NoError(t, err)
			assert.Contains(t, code, tt.want)
		})
	}
}

func TestGenerateFieldRequiresNameAndType(t *testing.T) {
	_, err := GenerateTemplate("field", map[string]interface{}{"type": "text"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "name")

	_, err = GenerateTemplate("field", map[string]interface{}{"name": "x"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "type")
}

func TestGenerateFieldDefaultValue(t *testing.T) {
	code, err := GenerateTemplate("field", map[string]interface{}{
		"name":         "status",
		"type":         "select",
		"defaultValue": "draft",
	})
	require.NoError(t, err)
	assert.Contains(t, code, "defaultValue: 'draft',")

	code, err = GenerateTemplate("field", map[string]interface{}{
		"name":         "count",
		"type":         "number",
		"defaultValue": float64(5),
	})
	require.NoError(t, err)
	assert.Contains(t, code, "defaultValue: 5,")
}

func TestGenerateGlobal(t *testing.T) {
	code, err := GenerateTemplate("global", map[string]interface{}{
		"slug":   "settings",
		"access": true,
		"admin":  map[string]interface{}{"group": "Admin"},
	})
	require.NoError(t, err)

	assert.Contains(t, code, "const Settings: GlobalConfig = {")
	assert.Contains(t, code, "group: 'Admin',")
	assert.Contains(t, code, "export default Settings;")
}

func TestGenerateConfig(t *testing.T) {
	code, err := GenerateTemplate("config", map[string]interface{}{
		"serverURL":   "https://example.com",
		"collections": []interface{}{"posts", "users"},
		"globals":     []interface{}{"settings"},
		"plugins":     []interface{}{"seo", "nested-docs"},
		"db":          "postgres",
		"admin":       map[string]interface{}{"user": "users", "bundler": "vite"},
	})
	require.NoError(t, err)

	assert.Contains(t, code, "import Posts from './collections/posts';")
	assert.Contains(t, code, "import Settings from './globals/settings';")
	assert.Contains(t, code, "import seoPlugin from '@payloadcms/plugin-seo';")
	assert.Contains(t, code, "postgresAdapter")
	assert.Contains(t, code, "viteBundler()")
	assert.Contains(t, code, "serverURL: 'https://example.com',")
	assert.Contains(t, code, "seoPlugin(),")
	assert.Contains(t, code, "nestedDocs({")
}

func TestGenerateConfigDefaults(t *testing.T) {
	code, err := GenerateTemplate("config", map[string]interface{}{})
	require.NoError(t, err)

	assert.Contains(t, code, "serverURL: 'http://localhost:3000',")
	assert.Contains(t, code, "mongooseAdapter")
	assert.Contains(t, code, "webpackBundler")
	assert.NotContains(t, code, "plugins: [")
}

func TestGenerateAccessControl(t *testing.T) {
	code, err := GenerateTemplate("access-control", map[string]interface{}{
		"name":  "article",
		"roles": []interface{}{"admin", "writer"},
	})
	require.NoError(t, err)

	assert.Contains(t, code, "type Role = 'admin' | 'writer';")
	assert.Contains(t, code, "export const articleAccess: Access")
}

func TestGenerateHook(t *testing.T) {
	code, err := GenerateTemplate("hook", map[string]interface{}{
		"name":      "posts",
		"operation": "update",
		"timing":    "before",
	})
	require.NoError(t, err)
	assert.Contains(t, code, "export const beforeUpdateHook: BeforeOperation")
	assert.Contains(t, code, "return data;")

	code, err = GenerateTemplate("hook", map[string]interface{}{"timing": "after"})
	require.NoError(t, err)
	assert.Contains(t, code, "AfterOperation")
	assert.Contains(t, code, "doc,")
	assert.Contains(t, code, "return doc;")
}

func TestGenerateEndpoint(t *testing.T) {
	code, err := GenerateTemplate("endpoint", map[string]interface{}{
		"path":   "/api/stats",
		"method": "get",
	})
	require.NoError(t, err)

	assert.Contains(t, code, "export const getapi_stats =")
	assert.Contains(t, code, "status(401)")
	assert.Contains(t, code, "path: '/api/stats',")

	code, err = GenerateTemplate("endpoint", map[string]interface{}{"auth": false})
	require.NoError(t, err)
	assert.NotContains(t, code, "status(401)")
}

func TestGeneratePlugin(t *testing.T) {
	code, err := GenerateTemplate("plugin", map[string]interface{}{
		"name":        "my-audit",
		"collections": []interface{}{"audit-log"},
	})
	require.NoError(t, err)

	assert.Contains(t, code, "export const my_auditPlugin =")
	assert.Contains(t, code, "slug: 'audit-log',")
	assert.Contains(t, code, "// No globals to add")
	assert.Contains(t, code, "// No endpoints to add")
}

func TestGenerateBlock(t *testing.T) {
	code, err := GenerateTemplate("block", map[string]interface{}{
		"name": "hero-banner",
	})
	require.NoError(t, err)

	assert.Contains(t, code, "export const hero_bannerBlock: Block")
	assert.Contains(t, code, "singular: 'Hero Banner',")
	assert.Contains(t, code, "name: 'image',")
	assert.Contains(t, code, "name: 'content',")
}

func TestGenerateMigration(t *testing.T) {
	code, err := GenerateTemplate("migration", map[string]interface{}{
		"name":       "backfill",
		"collection": "posts",
	})
	require.NoError(t, err)
	assert.Contains(t, code, "export const backfillMigration")
	assert.Contains(t, code, "await payload.update({")

	code, err = GenerateTemplate("migration", map[string]interface{}{
		"name":       "purge",
		"collection": "drafts",
		"operation":  "delete",
	})
	require.NoError(t, err)
	assert.Contains(t, code, "await payload.delete({")
}

func TestGeneratedFieldValidates(t *testing.T) {
	code, err := GenerateTemplate("field", map[string]interface{}{
		"name":     "title",
		"type":     "text",
		"required": true,
	})
	require.NoError(t, err)

	res, err := Validate(code, "field")
	require.NoError(t, err)
	assert.True(t, res.Valid, "errors: %v", res.Errors)
	assert.Empty(t, res.Warnings)
	assert.Empty(t, res.ViolatedRules)
}

func TestGeneratedCollectionValidates(t *testing.T) {
	code, err := GenerateTemplate("collection", map[string]interface{}{
		"slug":   "posts",
		"access": true,
		"admin":  map[string]interface{}{"useAsTitle": "title"},
		"fields": []interface{}{
			map[string]interface{}{"name": "title", "type": "text"},
		},
	})
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(code, "import"))

	res, err := Validate(code, "collection")
	require.NoError(t, err)
	assert.True(t, res.Valid, "errors: %v", res.Errors)
	assert.Empty(t, res.Warnings)
	assert.Empty(t, res.ViolatedRules)
}

func TestSanitizeIdentifier(t *testing.T) {
	assert.Equal(t, "my_plugin", sanitizeIdentifier("my-plugin"))
	assert.Equal(t, "_2fast", sanitizeIdentifier("2fast"))
	assert.Equal(t, "_plugin", sanitizeIdentifier("!!!"))
}
