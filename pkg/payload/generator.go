package payload

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
	"unicode"
)

// TemplateTypes lists the supported code template kinds.
var TemplateTypes = []string{
	"collection", "field", "global", "config", "access-control",
	"hook", "endpoint", "plugin", "block", "migration",
}

// IsTemplateType reports whether t names a supported template.
func IsTemplateType(t string) bool {
	for _, tt := range TemplateTypes {
		if tt == t {
			return true
		}
	}
	return false
}

// GenerateTemplate renders TypeScript source for the requested template
// type. Options is the decoded JSON options object for that template.
func GenerateTemplate(templateType string, options map[string]interface{}) (string, error) {
	if options == nil {
		options = map[string]interface{}{}
	}
	switch templateType {
	case "collection":
		return generateCollectionTemplate(options)
	case "field":
		return generateFieldTemplate(options)
	case "global":
		return generateGlobalTemplate(options)
	case "config":
		return generateConfigTemplate(options)
	case "access-control":
		return generateAccessControlTemplate(options), nil
	case "hook":
		return generateHookTemplate(options), nil
	case "endpoint":
		return generateEndpointTemplate(options), nil
	case "plugin":
		return generatePluginTemplate(options), nil
	case "block":
		return generateBlockTemplate(options)
	case "migration":
		return generateMigrationTemplate(options), nil
	default:
		return "", fmt.Errorf("unsupported template type %q. Supported types: %s",
			templateType, strings.Join(TemplateTypes, ", "))
	}
}

func getString(m map[string]interface{}, key string) (string, bool) {
	s, ok := m[key].(string)
	return s, ok
}

func getStringOr(m map[string]interface{}, key, fallback string) string {
	if s, ok := getString(m, key); ok {
		return s
	}
	return fallback
}

func getBool(m map[string]interface{}, key string, fallback bool) bool {
	if b, ok := m[key].(bool); ok {
		return b
	}
	return fallback
}

func getArray(m map[string]interface{}, key string) []interface{} {
	arr, _ := m[key].([]interface{})
	return arr
}

func getObject(m map[string]interface{}, key string) map[string]interface{} {
	obj, _ := m[key].(map[string]interface{})
	return obj
}

func stringItems(arr []interface{}) []string {
	var out []string
	for _, v := range arr {
		if s, ok := v.(string); ok {
			out = append(out, s)
		}
	}
	return out
}

// valueToLiteral renders a decoded JSON value as a TypeScript literal.
func valueToLiteral(v interface{}) string {
	switch val := v.(type) {
	case nil:
		return "null"
	case bool:
		return strconv.FormatBool(val)
	case float64:
		if val == math.Trunc(val) && math.Abs(val) < 1e15 {
			return strconv.FormatInt(int64(val), 10)
		}
		return strconv.FormatFloat(val, 'g', -1, 64)
	case int:
		return strconv.Itoa(val)
	case string:
		return "'" + strings.ReplaceAll(val, "'", "\\'") + "'"
	case []interface{}:
		parts := make([]string, len(val))
		for i, item := range val {
			parts[i] = valueToLiteral(item)
		}
		return "[" + strings.Join(parts, ", ") + "]"
	case map[string]interface{}:
		keys := make([]string, 0, len(val))
		for k := range val {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		parts := make([]string, len(keys))
		for i, k := range keys {
			parts[i] = k + ": " + valueToLiteral(val[k])
		}
		return "{" + strings.Join(parts, ", ") + "}"
	default:
		return fmt.Sprintf("%v", val)
	}
}

func generateCollectionTemplate(options map[string]interface{}) (string, error) {
	slug, ok := getString(options, "slug")
	if !ok {
		return "", fmt.Errorf("Collection slug is required")
	}
	fields := getArray(options, "fields")
	auth := getBool(options, "auth", false)
	timestamps := getBool(options, "timestamps", true)
	hooks := getBool(options, "hooks", false)
	access := getBool(options, "access", false)
	versions := getBool(options, "versions", false)
	admin := getObject(options, "admin")

	var fieldsCode string
	if len(fields) > 0 {
		lines := make([]string, 0, len(fields))
		for _, field := range fields {
			code, err := generateFieldEntry(field)
			if err != nil {
				return "", err
			}
			lines = append(lines, code)
		}
		fieldsCode = strings.Join(lines, ",\n    ")
	}

	var adminCode string
	if len(admin) > 0 {
		var parts strings.Builder
		if title, ok := getString(admin, "useAsTitle"); ok {
			fmt.Fprintf(&parts, "\n    useAsTitle: '%s',", title)
		}
		if cols := stringItems(getArray(admin, "defaultColumns")); cols != nil {
			quoted := make([]string, len(cols))
			for i, c := range cols {
				quoted[i] = "'" + c + "'"
			}
			fmt.Fprintf(&parts, "\n    defaultColumns: [%s],", strings.Join(quoted, ", "))
		}
		if group, ok := getString(admin, "group"); ok {
			fmt.Fprintf(&parts, "\n    group: '%s',", group)
		}
		adminCode = fmt.Sprintf("\n  admin: {%s\n  },", parts.String())
	}

	var hooksCode string
	if hooks {
		hooksCode = "\n  hooks: {\n    beforeOperation: [\n      // Add your hooks here\n    ],\n    afterOperation: [\n      // Add your hooks here\n    ],\n  },"
	}
	var accessCode string
	if access {
		accessCode = "\n  access: {\n    read: () => true,\n    update: () => true,\n    create: () => true,\n    delete: () => true,\n  },"
	}
	var authCode string
	if auth {
		authCode = "\n  auth: {\n    useAPIKey: true,\n    tokenExpiration: 7200,\n  },"
	}
	var versionsCode string
	if versions {
		versionsCode = "\n  versions: {\n    drafts: true,\n  },"
	}
	timestampsCode := ""
	if timestamps {
		timestampsCode = "timestamps: true,\n  "
	}

	return fmt.Sprintf(
		"import { CollectionConfig } from 'payload/types';\n\nconst %s: CollectionConfig = {\n  slug: '%s',%s%s%s%s%s\n  %sfields: [\n    %s\n  ],\n};\n\nexport default %s;",
		capitalize(slug), slug, adminCode, authCode, accessCode, hooksCode,
		versionsCode, timestampsCode, fieldsCode, capitalize(slug)), nil
}

func generateFieldTemplate(options map[string]interface{}) (string, error) {
	return generateFieldEntry(options)
}

func generateFieldEntry(value interface{}) (string, error) {
	m, ok := value.(map[string]interface{})
	if !ok {
		return "", fmt.Errorf("Field options must be an object")
	}
	name, ok := getString(m, "name")
	if !ok {
		return "", fmt.Errorf("Field name is required")
	}
	fieldType, ok := getString(m, "type")
	if !ok {
		return "", fmt.Errorf("Field type is required")
	}

	requiredCode := ""
	if getBool(m, "required", false) {
		requiredCode = "\n    required: true,"
	}
	uniqueCode := ""
	if getBool(m, "unique", false) {
		uniqueCode = "\n    unique: true,"
	}
	localizedCode := ""
	if getBool(m, "localized", false) {
		localizedCode = "\n    localized: true,"
	}

	admin := getObject(m, "admin")
	var adminCode string
	if len(admin) > 0 {
		var parts strings.Builder
		if description, ok := getString(admin, "description"); ok {
			fmt.Fprintf(&parts, "\n      description: '%s',", description)
		}
		if getBool(admin, "readOnly", false) {
			parts.WriteString("\n      readOnly: true,")
		}
		adminCode = fmt.Sprintf("\n    admin: {%s\n    },", parts.String())
	}

	var accessCode string
	if getBool(m, "access", false) {
		accessCode = "\n    access: {\n      read: () => true,\n      update: () => true,\n    },"
	}
	var validationCode string
	if getBool(m, "validation", false) {
		validationCode = "\n    validate: (value) => {\n      if (value === undefined || value === null) {\n        return 'Value is required';\n      }\n      return true;\n    },"
	}

	var defaultValueCode string
	if dv, ok := m["defaultValue"]; ok {
		defaultValueCode = fmt.Sprintf("\n    defaultValue: %s,", valueToLiteral(dv))
	}

	var fieldSpecific string
	switch fieldType {
	case "text", "textarea", "email", "code":
		fieldSpecific = "\n    minLength: 1,\n    maxLength: 255,"
	case "number":
		fieldSpecific = "\n    min: 0,\n    max: 1000,"
	case "select":
		fieldSpecific = "\n    options: [\n      { label: 'Option 1', value: 'option1' },\n      { label: 'Option 2', value: 'option2' },\n    ],\n    hasMany: false,"
	case "relationship":
		fieldSpecific = "\n    relationTo: 'collection-name',\n    hasMany: false,"
	case "array":
		fieldSpecific = "\n    minRows: 0,\n    maxRows: 10,\n    fields: [\n      {\n        name: 'subField',\n        type: 'text',\n        required: true,\n      },\n    ],"
	case "blocks":
		fieldSpecific = "\n    blocks: [\n      {\n        slug: 'block-name',\n        fields: [\n          {\n            name: 'blockField',\n            type: 'text',\n            required: true,\n          },\n        ],\n      },\n    ],"
	}

	return fmt.Sprintf(
		"{\n    name: '%s',\n    type: '%s',%s%s%s%s%s%s%s%s\n  }",
		name, fieldType, requiredCode, uniqueCode, localizedCode,
		adminCode, accessCode, validationCode, defaultValueCode, fieldSpecific), nil
}

func generateGlobalTemplate(options map[string]interface{}) (string, error) {
	slug, ok := getString(options, "slug")
	if !ok {
		return "", fmt.Errorf("Global slug is required")
	}
	fields := getArray(options, "fields")
	access := getBool(options, "access", false)
	versions := getBool(options, "versions", false)
	admin := getObject(options, "admin")

	var fieldsCode string
	if len(fields) > 0 {
		lines := make([]string, 0, len(fields))
		for _, field := range fields {
			code, err := generateFieldEntry(field)
			if err != nil {
				return "", err
			}
			lines = append(lines, code)
		}
		fieldsCode = strings.Join(lines, ",\n    ")
	}

	var adminCode string
	if group, ok := getString(admin, "group"); ok {
		adminCode = fmt.Sprintf("\n  admin: {\n    group: '%s',\n  },", group)
	}
	var accessCode string
	if access {
		accessCode = "\n  access: {\n    read: () => true,\n    update: () => true,\n  },"
	}
	var versionsCode string
	if versions {
		versionsCode = "\n  versions: {\n    drafts: true,\n  },"
	}

	return fmt.Sprintf(
		"import { GlobalConfig } from 'payload/types';\n\nconst %s: GlobalConfig = {\n  slug: '%s',%s%s%s\n  fields: [\n    %s\n  ],\n};\n\nexport default %s;",
		capitalize(slug), slug, adminCode, accessCode, versionsCode,
		fieldsCode, capitalize(slug)), nil
}

func generateConfigTemplate(options map[string]interface{}) (string, error) {
	serverURL := getStringOr(options, "serverURL", "http://localhost:3000")
	collections := stringItems(getArray(options, "collections"))
	globals := stringItems(getArray(options, "globals"))
	plugins := stringItems(getArray(options, "plugins"))
	db := getStringOr(options, "db", "mongodb")

	var collectionImports []string
	for _, c := range collections {
		collectionImports = append(collectionImports,
			fmt.Sprintf("import %s from './collections/%s';", capitalize(c), c))
	}
	var globalImports []string
	for _, g := range globals {
		globalImports = append(globalImports,
			fmt.Sprintf("import %s from './globals/%s';", capitalize(g), g))
	}

	var pluginImports []string
	for _, plugin := range plugins {
		switch plugin {
		case "form-builder":
			pluginImports = append(pluginImports, "import formBuilder from '@payloadcms/plugin-form-builder';")
		case "seo":
			pluginImports = append(pluginImports, "import seoPlugin from '@payloadcms/plugin-seo';")
		case "nested-docs":
			pluginImports = append(pluginImports, "import nestedDocs from '@payloadcms/plugin-nested-docs';")
		default:
			pluginImports = append(pluginImports,
				fmt.Sprintf("import %s from '@payloadcms/plugin-%s';", plugin, plugin))
		}
	}

	var pluginsInit string
	if len(plugins) > 0 {
		var parts []string
		for _, plugin := range plugins {
			switch plugin {
			case "form-builder":
				parts = append(parts, "formBuilder({\n      formOverrides: {\n        admin: {\n          group: 'Content',\n        },\n      },\n      formSubmissionOverrides: {\n        admin: {\n          group: 'Content',\n        },\n      },\n      redirectRelationships: ['pages'],\n    }),")
			case "seo":
				parts = append(parts, "seoPlugin(),")
			case "nested-docs":
				parts = append(parts, "nestedDocs({\n      collections: ['pages'],\n    }),")
			default:
				parts = append(parts, plugin+"(),")
			}
		}
		pluginsInit = fmt.Sprintf("\n  plugins: [\n    %s\n  ],", strings.Join(parts, "\n    "))
	}

	var collectionsInit string
	if len(collections) > 0 {
		items := make([]string, len(collections))
		for i, c := range collections {
			items[i] = capitalize(c) + ","
		}
		collectionsInit = fmt.Sprintf("\n  collections: [\n    %s\n  ],", strings.Join(items, "\n    "))
	}
	var globalsInit string
	if len(globals) > 0 {
		items := make([]string, len(globals))
		for i, g := range globals {
			items[i] = capitalize(g) + ","
		}
		globalsInit = fmt.Sprintf("\n  globals: [\n    %s\n  ],", strings.Join(items, "\n    "))
	}

	dbImports := "import { mongooseAdapter } from '@payloadcms/db-mongoose';"
	dbCode := "\n  db: mongooseAdapter({\n    url: process.env.MONGODB_URI,\n  }),"
	if db == "postgres" {
		dbImports = "import { postgresAdapter } from '@payloadcms/db-postgres';"
		dbCode = "\n  db: postgresAdapter({\n    pool: {\n      connectionString: process.env.DATABASE_URI,\n    },\n  }),"
	}

	admin := getObject(options, "admin")
	bundlerImports := "import { webpackBundler } from '@payloadcms/bundler-webpack';"
	bundler := "webpackBundler()"
	if b, _ := getString(admin, "bundler"); b == "vite" {
		bundlerImports = "import { viteBundler } from '@payloadcms/bundler-vite';"
		bundler = "viteBundler()"
	}

	var adminInit string
	if len(admin) > 0 {
		user := getStringOr(admin, "user", "users")
		adminInit = fmt.Sprintf(
			"\n  admin: {\n    user: '%s',\n    bundler: %s,\n    meta: {\n      titleSuffix: '- Payload CMS',\n      favicon: '/assets/favicon.ico',\n      ogImage: '/assets/og-image.jpg',\n    },\n  },",
			user, bundler)
	}

	var imports strings.Builder
	fmt.Fprintf(&imports, "import path from 'path';\nimport { buildConfig } from 'payload/config';\n%s\n%s",
		dbImports, bundlerImports)
	if len(collectionImports) > 0 {
		imports.WriteString("\n" + strings.Join(collectionImports, "\n"))
	}
	if len(globalImports) > 0 {
		imports.WriteString("\n" + strings.Join(globalImports, "\n"))
	}
	if len(pluginImports) > 0 {
		imports.WriteString("\n" + strings.Join(pluginImports, "\n"))
	}

	return fmt.Sprintf(
		"%s\n\nexport default buildConfig({\n  serverURL: '%s',%s%s%s%s%s\n  typescript: {\n    outputFile: path.resolve(__dirname, 'payload-types.ts'),\n  },\n  graphQL: {\n    schemaOutputFile: path.resolve(__dirname, 'generated-schema.graphql'),\n  },\n  cors: ['http://localhost:3000'],\n  csrf: [\n    'http://localhost:3000',\n  ],\n});",
		imports.String(), serverURL, adminInit, dbCode, pluginsInit,
		collectionsInit, globalsInit), nil
}

func generateAccessControlTemplate(options map[string]interface{}) string {
	name := getStringOr(options, "name", "default")
	roles := stringItems(getArray(options, "roles"))
	if len(roles) == 0 {
		roles = []string{"admin", "editor", "user"}
	}

	quoted := make([]string, len(roles))
	for i, r := range roles {
		quoted[i] = "'" + r + "'"
	}
	rolesUnion := strings.Join(quoted, " | ")

	return fmt.Sprintf(
		"import { Access } from 'payload/types';\n\ntype Role = %s;\n\nexport const %sAccess: Access = ({ req }) => {\n  if (!req.user) {\n    return false;\n  }\n\n  if (req.user.role === 'admin') {\n    return true;\n  }\n\n  if (req.user.role === 'editor') {\n    return {\n      read: true,\n      update: true,\n      create: true,\n      delete: false,\n    };\n  }\n\n  if (req.user.role === 'user') {\n    return {\n      read: {\n        and: [\n          {\n            createdBy: {\n              equals: req.user.id,\n            },\n          },\n        ],\n      },\n      update: {\n        createdBy: {\n          equals: req.user.id,\n        },\n      },\n      create: true,\n      delete: {\n        createdBy: {\n          equals: req.user.id,\n        },\n      },\n    };\n  }\n\n  return false;\n};",
		rolesUnion, name)
}

func generateHookTemplate(options map[string]interface{}) string {
	hookType := getStringOr(options, "type", "collection")
	name := getStringOr(options, "name", "default")
	operation := getStringOr(options, "operation", "create")
	timing := getStringOr(options, "timing", "before")

	timingType := "AfterOperation"
	docArg := "\n  doc,"
	prevDocArg := "previousDoc,\n"
	body := "return doc;"
	if timing == "before" {
		timingType = "BeforeOperation"
		docArg = ""
		prevDocArg = ""
		body = "return data;"
	}

	return fmt.Sprintf(
		"import { %s } from 'payload/types';\n\nexport const %s%sHook: %s = async ({ \n  req, \n  data, \n  operation,%s\n  %s\n}) => {\n  console.log(`%s %s operation on %s %s`);\n  %s \n};",
		timingType, timing, capitalize(operation), timingType, docArg,
		prevDocArg, timing, operation, hookType, name, body)
}

func generateEndpointTemplate(options map[string]interface{}) string {
	path := getStringOr(options, "path", "/api/custom")
	method := getStringOr(options, "method", "get")
	auth := getBool(options, "auth", true)

	handlerName := method + strings.ReplaceAll(
		strings.Trim(strings.ReplaceAll(path, "/", "_"), "_"), "__", "_")

	authCheck := ""
	if auth {
		authCheck = "if (!req.user) {\n      return res.status(401).json({\n        message: 'Unauthorized',\n      });\n    }\n\n    "
	}

	return fmt.Sprintf(
		"import { Payload } from 'payload';\nimport { Request, Response } from 'express';\n\nexport const %s = async (req: Request, res: Response, payload: Payload) => {\n  try {\n    %sconst result = {\n      message: 'Success',\n      timestamp: new Date().toISOString(),\n    };\n\n    return res.status(200).json(result);\n  } catch (error) {\n    console.error(`Error in %s endpoint:`, error);\n    return res.status(500).json({\n      message: 'Internal Server Error',\n      error: error.message,\n    });\n  }\n};\n\nexport default {\n  path: '%s',\n  method: '%s',\n  handler: %s,\n};",
		handlerName, authCheck, path, path, method, handlerName)
}

func generatePluginTemplate(options map[string]interface{}) string {
	name := getStringOr(options, "name", "custom-plugin")
	collections := stringItems(getArray(options, "collections"))
	globals := stringItems(getArray(options, "globals"))
	endpoints := stringItems(getArray(options, "endpoints"))

	ident := sanitizeIdentifier(name)

	collectionsCode := "// No collections to add"
	if len(collections) > 0 {
		items := make([]string, len(collections))
		for i, c := range collections {
			items[i] = fmt.Sprintf("{\n          slug: '%s',\n        }", c)
		}
		collectionsCode = fmt.Sprintf(
			"\n      const collections = [\n        %s\n      ];\n      \n      config.collections = [\n        ...(config.collections || []),\n        ...collections,\n      ];",
			strings.Join(items, ",\n        "))
	}

	globalsCode := "// No globals to add"
	if len(globals) > 0 {
		items := make([]string, len(globals))
		for i, g := range globals {
			items[i] = fmt.Sprintf("{\n          slug: '%s',\n        }", g)
		}
		globalsCode = fmt.Sprintf(
			"\n      const globals = [\n        %s\n      ];\n      \n      config.globals = [\n        ...(config.globals || []),\n        ...globals,\n      ];",
			strings.Join(items, ",\n        "))
	}

	endpointsCode := "// No endpoints to add"
	if len(endpoints) > 0 {
		items := make([]string, len(endpoints))
		for i, e := range endpoints {
			items[i] = fmt.Sprintf(
				"{\n          path: '/%s',\n          method: 'get',\n          handler: async (req, res) => {\n            res.status(200).json({ message: '%s endpoint' });\n          },\n        }",
				e, e)
		}
		endpointsCode = fmt.Sprintf(
			"\n      const endpoints = [\n        %s\n      ];\n      \n      config.endpoints = [\n        ...(config.endpoints || []),\n        ...endpoints,\n      ];",
			strings.Join(items, ",\n        "))
	}

	return fmt.Sprintf(
		"import { Config, Plugin } from 'payload/config';\n\nexport interface %sPluginOptions {\n  enabled?: boolean;\n}\n\nexport const %sPlugin = (options: %sPluginOptions = {}): Plugin => {\n  return {\n    name: '%s',\n    config: (incomingConfig: Config): Config => {\n      const { enabled = true } = options;\n      \n      if (!enabled) {\n        return incomingConfig;\n      }\n      \n      const config = { ...incomingConfig };%s\n      %s\n      %s\n      return config;\n    },\n  };\n};\n\nexport default %sPlugin;",
		ident, ident, ident, name, collectionsCode, globalsCode, endpointsCode, ident)
}

func generateBlockTemplate(options map[string]interface{}) (string, error) {
	name := getStringOr(options, "name", "custom-block")
	fields := getArray(options, "fields")
	imageField := getBool(options, "imageField", true)
	contentField := getBool(options, "contentField", true)

	var fieldsCode string
	if len(fields) > 0 {
		parts := make([]string, 0, len(fields))
		for _, field := range fields {
			code, err := generateFieldEntry(field)
			if err != nil {
				return "", err
			}
			parts = append(parts, code)
		}
		fieldsCode = strings.Join(parts, ",\n    ")
	}

	var imageCode string
	if imageField {
		imageCode = "{\n    name: 'image',\n    type: 'upload',\n    relationTo: 'media',\n    required: true,\n    admin: {\n      description: 'Add an image to this block',\n    },\n  },"
	}
	var contentCode string
	if contentField {
		contentCode = "{\n    name: 'content',\n    type: 'richText',\n    required: true,\n    admin: {\n      description: 'Add content to this block',\n    },\n  },"
	}

	label := capitalizeWords(strings.ReplaceAll(name, "-", " "))
	ident := sanitizeIdentifier(name)

	return fmt.Sprintf(
		"import { Block } from 'payload/types';\n\nexport const %sBlock: Block = {\n  slug: '%s',\n  labels: {\n    singular: '%s',\n    plural: '%ss',\n  },\n  fields: [\n    %s\n    %s\n    %s\n  ],\n};\n\nexport default %sBlock;",
		ident, name, label, label, imageCode, contentCode, fieldsCode, ident), nil
}

func generateMigrationTemplate(options map[string]interface{}) string {
	name := getStringOr(options, "name", "custom-migration")
	collection := getStringOr(options, "collection", "")
	operation := getStringOr(options, "operation", "update")

	var body string
	switch {
	case collection == "":
		body = "// Add your migration logic here\n    // This could be schema changes, data transformations, etc.\n    "
	case operation == "delete":
		body = fmt.Sprintf(
			"// Get the collection\n    const collection = '%s';\n    \n    const docs = await payload.find({\n      collection,\n      limit: 100,\n    });\n    \n    console.log(`Found ${docs.docs.length} documents to migrate`);\n    \n    for (const doc of docs.docs) {\n      await payload.delete({\n        collection,\n        id: doc.id,\n      });\n    }\n    ",
			collection)
	default:
		body = fmt.Sprintf(
			"// Get the collection\n    const collection = '%s';\n    \n    const docs = await payload.find({\n      collection,\n      limit: 100,\n    });\n    \n    console.log(`Found ${docs.docs.length} documents to migrate`);\n    \n    for (const doc of docs.docs) {\n      await payload.update({\n        collection,\n        id: doc.id,\n        data: {\n          migratedAt: new Date().toISOString(),\n        },\n      });\n    }\n    ",
			collection)
	}

	ident := sanitizeIdentifier(name)
	return fmt.Sprintf(
		"import { Payload } from 'payload';\n\nexport const %sMigration = async (payload: Payload) => {\n  try {\n    console.log('Starting migration: %s');\n    \n    %sconsole.log('Migration completed successfully: %s');\n    return { success: true };\n  } catch (error) {\n    console.error('Migration failed:', error);\n    return { success: false, error: error.message };\n  }\n};\n\nexport default %sMigration;",
		ident, name, body, name, ident)
}

func capitalize(s string) string {
	if s == "" {
		return ""
	}
	runes := []rune(s)
	return string(unicode.ToUpper(runes[0])) + string(runes[1:])
}

func capitalizeWords(s string) string {
	words := strings.Fields(s)
	for i, w := range words {
		words[i] = capitalize(w)
	}
	return strings.Join(words, " ")
}

func sanitizeIdentifier(s string) string {
	var b strings.Builder
	for idx, ch := range s {
		switch {
		case ch >= 'a' && ch <= 'z', ch >= 'A' && ch <= 'Z', ch == '_':
			b.WriteRune(ch)
		case ch >= '0' && ch <= '9':
			if idx == 0 {
				b.WriteRune('_')
			}
			b.WriteRune(ch)
		case ch == '-':
			b.WriteRune('_')
		}
	}
	if b.Len() == 0 {
		return "_plugin"
	}
	return b.String()
}
