package store

// SchemaInfo describes the tax_alerts table for the model
const SchemaInfo = `
Table: tax_alerts

Columns:
- id (INTEGER PRIMARY KEY AUTOINCREMENT)
- title (TEXT)
- date (TEXT)
- jurisdiction (TEXT)
- topics (TEXT)
- summary (TEXT)
- full_text (TEXT)
- source_url (TEXT)
- tags (TEXT)
- created_at (TIMESTAMP)
- updated_at (TIMESTAMP)
`
