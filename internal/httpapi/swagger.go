package httpapi

import (
	"github.com/go-chi/chi/v5"
	httpSwagger "github.com/swaggo/http-swagger"
	"github.com/swaggo/swag"
)

// docTemplate mirrors the handler annotations in server.go.
const docTemplate = `{
    "schemes": {{ marshal .Schemes }},
    "swagger": "2.0",
    "info": {
        "description": "{{escape .Description}}",
        "title": "{{.Title}}",
        "version": "{{.Version}}"
    },
    "host": "{{.Host}}",
    "basePath": "{{.BasePath}}",
    "paths": {
        "/healthz": {
            "get": {
                "produces": ["text/plain"],
                "tags": ["health"],
                "summary": "Liveness probe",
                "responses": {"200": {"description": "ok", "schema": {"type": "string"}}}
            }
        },
        "/readyz": {
            "get": {
                "produces": ["text/plain"],
                "tags": ["health"],
                "summary": "Readiness probe",
                "responses": {
                    "200": {"description": "ready", "schema": {"type": "string"}},
                    "503": {"description": "starting", "schema": {"type": "string"}}
                }
            }
        },
        "/status": {
            "get": {
                "produces": ["application/json"],
                "tags": ["status"],
                "summary": "Runtime status",
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/types.StatusResponse"}}}
            }
        },
        "/sessions": {
            "get": {
                "produces": ["application/json"],
                "tags": ["sessions"],
                "summary": "Live panel sessions",
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "array", "items": {"$ref": "#/definitions/types.SessionStatus"}}}
                }
            }
        },
        "/sessions/close": {
            "post": {
                "tags": ["sessions"],
                "summary": "Close every panel session",
                "responses": {"204": {"description": "No Content"}}
            }
        },
        "/sessions/{user}/close": {
            "post": {
                "produces": ["application/json"],
                "tags": ["sessions"],
                "summary": "Close a user's panel",
                "parameters": [{"type": "string", "description": "user id", "name": "user", "in": "path", "required": true}],
                "responses": {
                    "202": {"description": "Accepted"},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/types.ErrorResponse"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/types.ErrorResponse"}}
                }
            }
        },
        "/debug": {
            "put": {
                "consumes": ["application/json"],
                "tags": ["logging"],
                "summary": "Toggle debug logging",
                "parameters": [{"description": "toggle", "name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/httpapi.DebugRequest"}}],
                "responses": {
                    "204": {"description": "No Content"},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/types.ErrorResponse"}},
                    "415": {"description": "Unsupported Media Type", "schema": {"$ref": "#/definitions/types.ErrorResponse"}}
                }
            }
        }
    },
    "definitions": {
        "httpapi.DebugRequest": {
            "type": "object",
            "properties": {"enabled": {"type": "boolean", "example": true}}
        },
        "types.ErrorResponse": {
            "type": "object",
            "properties": {
                "code": {"type": "integer", "example": 404},
                "error": {"type": "string", "example": "no open panel for user"}
            }
        },
        "types.SessionStatus": {
            "type": "object",
            "properties": {
                "user": {"type": "string"},
                "panel": {"type": "string", "example": "Guild List"},
                "input_mode": {"type": "boolean"},
                "last_interaction": {"type": "integer"}
            }
        },
        "types.ServiceStatus": {
            "type": "object",
            "properties": {
                "id": {"type": "string", "example": "scheduler"},
                "lifecycle": {"type": "boolean"},
                "state": {"type": "string", "example": "started"},
                "error": {"type": "string"}
            }
        },
        "types.ListenerStatus": {
            "type": "object",
            "properties": {
                "by_type": {"type": "object", "additionalProperties": {"type": "integer"}},
                "total": {"type": "integer"}
            }
        },
        "types.HostStatus": {
            "type": "object",
            "properties": {
                "type": {"type": "string", "example": "paper"},
                "version": {"type": "string", "example": "1.20.4-R0.1-SNAPSHOT"},
                "supported": {"type": "boolean"}
            }
        },
        "types.StatusResponse": {
            "type": "object",
            "properties": {
                "open_panels": {"type": "integer"},
                "sessions": {"type": "array", "items": {"$ref": "#/definitions/types.SessionStatus"}},
                "services": {"type": "array", "items": {"$ref": "#/definitions/types.ServiceStatus"}},
                "listeners": {"$ref": "#/definitions/types.ListenerStatus"},
                "host": {"$ref": "#/definitions/types.HostStatus"},
                "active_loops": {"type": "integer"}
            }
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it.
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/",
	Schemes:          []string{"http"},
	Title:            "guildcore admin API",
	Description:      "Operational endpoints for the guild panel runtime.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}

// MountSwagger serves the UI at /swagger/index.html and the document at
// /swagger/doc.json.
func MountSwagger(r chi.Router) {
	r.Get("/swagger/*", httpSwagger.Handler(httpSwagger.URL("/swagger/doc.json")))
}
