package docs

import "github.com/swaggo/swag"

const docTemplate = `{
  "swagger": "2.0",
  "info": {
    "title": "Lead Triage Backend",
    "description": "Lead qualification pipeline: BANT scoring, manual overrides and dashboard statistics",
    "version": "1.0"
  },
  "basePath": "/",
  "paths": {
    "/healthz": {"get": {"tags": ["health"], "summary": "Health check", "responses": {"200": {"description": "OK"}, "503": {"description": "Storage unavailable"}}}},
    "/api/leads": {
      "get": {"tags": ["leads"], "summary": "List leads", "parameters": [
        {"name": "status", "in": "query", "type": "string", "enum": ["all", "pending", "qualified", "disqualified", "reviewing"]},
        {"name": "q", "in": "query", "type": "string"}
      ], "responses": {"200": {"description": "OK"}}},
      "post": {"tags": ["leads"], "summary": "Ingest a lead", "responses": {"201": {"description": "Created"}, "400": {"description": "Validation failed"}}}
    },
    "/api/leads/{id}": {
      "get": {"tags": ["leads"], "summary": "Lead details", "parameters": [{"name": "id", "in": "path", "required": true, "type": "string"}], "responses": {"200": {"description": "OK"}, "404": {"description": "Not found"}}},
      "delete": {"tags": ["leads"], "summary": "Delete a lead", "parameters": [{"name": "id", "in": "path", "required": true, "type": "string"}], "responses": {"204": {"description": "Deleted"}, "404": {"description": "Not found"}}}
    },
    "/api/leads/{id}/override": {"post": {"tags": ["leads"], "summary": "Override a lead's status", "parameters": [{"name": "id", "in": "path", "required": true, "type": "string"}], "responses": {"200": {"description": "OK"}, "400": {"description": "Validation failed"}, "404": {"description": "Not found"}}}},
    "/api/leads/{id}/notes": {"put": {"tags": ["leads"], "summary": "Replace a lead's notes", "parameters": [{"name": "id", "in": "path", "required": true, "type": "string"}], "responses": {"200": {"description": "OK"}, "404": {"description": "Not found"}}}},
    "/api/leads/{id}/qualify": {"post": {"tags": ["qualify"], "summary": "Qualify one lead", "parameters": [{"name": "id", "in": "path", "required": true, "type": "string"}], "responses": {"200": {"description": "OK"}, "404": {"description": "Not found"}, "502": {"description": "Scoring service failure"}}}},
    "/api/stats": {"get": {"tags": ["leads"], "summary": "Lead statistics", "responses": {"200": {"description": "OK"}}}},
    "/api/qualify": {"post": {"tags": ["qualify"], "summary": "Qualify all unqualified leads", "responses": {"202": {"description": "Run started"}, "409": {"description": "Run already in progress"}}}},
    "/api/qualify/cancel": {"post": {"tags": ["qualify"], "summary": "Cancel the active run", "responses": {"202": {"description": "Cancelling"}, "404": {"description": "No run in progress"}}}},
    "/api/qualify/events": {"get": {"tags": ["runs"], "summary": "Run progress stream", "produces": ["text/event-stream"], "responses": {"200": {"description": "Event stream"}}}},
    "/api/runs/latest": {"get": {"tags": ["runs"], "summary": "Latest run", "responses": {"200": {"description": "OK"}, "404": {"description": "No runs found"}}}}
  }
}`

func init() {
	swag.Register(swag.Name, &s{})
}

type s struct{}

func (s *s) ReadDoc() string {
	return docTemplate
}
