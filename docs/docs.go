// Package docs is generated by swag from the handler annotations. Regenerate with:
//
//	swag init -g cmd/api/main.go
package docs

import "github.com/swaggo/swag"

const docTemplate = `{
    "schemes": {{ marshal .Schemes }},
    "swagger": "2.0",
    "info": {
        "description": "{{escape .Description}}",
        "title": "{{.Title}}",
        "contact": {},
        "version": "{{.Version}}"
    },
    "host": "{{.Host}}",
    "basePath": "{{.BasePath}}",
    "paths": {
        "/health": {"get": {"produces": ["application/json"], "tags": ["health"], "summary": "Readiness check", "responses": {"200": {"description": "OK"}, "503": {"description": "Service Unavailable"}}}},
        "/auth/session": {"get": {"produces": ["application/json"], "tags": ["auth"], "summary": "Current session", "responses": {"200": {"description": "OK"}}}},
        "/auth/login": {"get": {"tags": ["auth"], "summary": "Start browser sign-in", "responses": {"302": {"description": "Found"}, "501": {"description": "Not Implemented"}}}},
        "/auth/callback": {"get": {"produces": ["application/json"], "tags": ["auth"], "summary": "Sign-in callback", "parameters": [{"type": "string", "name": "state", "in": "query", "required": true}, {"type": "string", "name": "code", "in": "query", "required": true}], "responses": {"200": {"description": "OK"}, "400": {"description": "Bad Request"}, "502": {"description": "Bad Gateway"}}}},
        "/auth/signin": {"post": {"produces": ["application/json"], "tags": ["auth"], "summary": "Sign in", "responses": {"200": {"description": "OK"}, "502": {"description": "Bad Gateway"}}}},
        "/auth/signout": {"post": {"tags": ["auth"], "summary": "Sign out", "responses": {"204": {"description": "No Content"}}}},
        "/api/documents": {
            "get": {"produces": ["application/json"], "tags": ["documents"], "summary": "List documents", "responses": {"200": {"description": "OK"}, "401": {"description": "Unauthorized"}, "502": {"description": "Bad Gateway"}}},
            "post": {"consumes": ["multipart/form-data"], "produces": ["application/json"], "tags": ["documents"], "summary": "Upload a document", "parameters": [{"type": "file", "name": "file", "in": "formData", "required": true}, {"type": "string", "name": "document_name", "in": "formData", "required": true}, {"type": "string", "name": "subject", "in": "formData"}, {"type": "string", "name": "topic", "in": "formData"}], "responses": {"201": {"description": "Created"}, "400": {"description": "Bad Request"}, "401": {"description": "Unauthorized"}}}
        },
        "/api/documents/{id}/content": {"get": {"produces": ["application/json"], "tags": ["documents"], "summary": "Document content", "parameters": [{"type": "string", "name": "id", "in": "path", "required": true}], "responses": {"200": {"description": "OK"}, "404": {"description": "Not Found"}}}},
        "/api/documents/{id}/summarize": {"post": {"produces": ["application/json"], "tags": ["ai"], "summary": "Summarize a document", "parameters": [{"type": "string", "name": "id", "in": "path", "required": true}], "responses": {"200": {"description": "OK"}, "502": {"description": "Bad Gateway"}}}},
        "/api/documents/{id}/explain": {"post": {"produces": ["application/json"], "tags": ["ai"], "summary": "Explain a document", "parameters": [{"type": "string", "name": "id", "in": "path", "required": true}], "responses": {"200": {"description": "OK"}}}},
        "/api/documents/{id}/quiz": {"post": {"produces": ["application/json"], "tags": ["ai"], "summary": "Generate a quiz", "parameters": [{"type": "string", "name": "id", "in": "path", "required": true}], "responses": {"200": {"description": "OK"}}}},
        "/api/documents/{id}/ask": {"post": {"consumes": ["application/json"], "produces": ["application/json"], "tags": ["ai"], "summary": "Ask about a document", "parameters": [{"type": "string", "name": "id", "in": "path", "required": true}], "responses": {"200": {"description": "OK"}, "400": {"description": "Bad Request"}}}},
        "/api/documents/{id}/discussions": {
            "get": {"produces": ["application/json"], "tags": ["discussions"], "summary": "List discussion messages", "parameters": [{"type": "string", "name": "id", "in": "path", "required": true}], "responses": {"200": {"description": "OK"}}},
            "post": {"consumes": ["application/json"], "tags": ["discussions"], "summary": "Post a discussion message", "parameters": [{"type": "string", "name": "id", "in": "path", "required": true}], "responses": {"204": {"description": "No Content"}, "400": {"description": "Bad Request"}}}
        },
        "/api/speech": {"post": {"consumes": ["application/json"], "produces": ["application/json"], "tags": ["speech"], "summary": "Text to speech", "responses": {"201": {"description": "Created"}, "400": {"description": "Bad Request"}}}},
        "/api/activity": {"get": {"produces": ["application/json"], "tags": ["activity"], "summary": "Activity journal", "parameters": [{"type": "integer", "default": 20, "name": "limit", "in": "query"}, {"type": "integer", "default": 0, "name": "offset", "in": "query"}], "responses": {"200": {"description": "OK"}, "400": {"description": "Bad Request"}}}},
        "/audio/{key}": {
            "get": {"produces": ["audio/mpeg"], "tags": ["speech"], "summary": "Play an audio clip", "parameters": [{"type": "string", "name": "key", "in": "path", "required": true}], "responses": {"200": {"description": "OK"}, "404": {"description": "Not Found"}}},
            "delete": {"tags": ["speech"], "summary": "Release an audio clip", "parameters": [{"type": "string", "name": "key", "in": "path", "required": true}], "responses": {"204": {"description": "No Content"}, "404": {"description": "Not Found"}}}
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/",
	Schemes:          []string{},
	Title:            "StudyMate API",
	Description:      "Authenticated gateway to the StudyMate study-assistant backend.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
