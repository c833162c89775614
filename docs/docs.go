// Package docs registers the OpenAPI document served at /docs.
package docs

import "github.com/swaggo/swag"

const docTemplate = `{
    "schemes": {{ marshal .Schemes }},
    "swagger": "2.0",
    "info": {
        "description": "{{escape .Description}}",
        "title": "{{.Title}}",
        "contact": {
            "name": "MediTrack"
        },
        "license": {
            "name": "MIT"
        },
        "version": "{{.Version}}"
    },
    "host": "{{.Host}}",
    "basePath": "{{.BasePath}}",
    "securityDefinitions": {
        "BearerAuth": {
            "type": "apiKey",
            "name": "Authorization",
            "in": "header"
        }
    },
    "paths": {
        "/alerts/check": {
            "get": {
                "security": [{"BearerAuth": []}],
                "description": "Returns the caller's due medicine and appointment alerts. Returned appointment alerts are marked as alerted and never returned again.",
                "produces": ["application/json"],
                "tags": ["alerts"],
                "summary": "Check all alerts",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handler.AlertsResponse"}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/respond.ErrorResponse"}}
                }
            }
        },
        "/medicines/alerts/check": {
            "get": {
                "security": [{"BearerAuth": []}],
                "description": "Returns the caller's queued medicine alerts. Repeated polls within the retention window return the same alerts.",
                "produces": ["application/json"],
                "tags": ["alerts"],
                "summary": "Check medicine alerts",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handler.AlertsResponse"}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/respond.ErrorResponse"}}
                }
            }
        },
        "/appointments/alerts/check": {
            "get": {
                "security": [{"BearerAuth": []}],
                "description": "Returns the caller's due appointment alerts and atomically marks them as alerted.",
                "produces": ["application/json"],
                "tags": ["alerts"],
                "summary": "Check appointment alerts",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handler.AlertsResponse"}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/respond.ErrorResponse"}}
                }
            }
        }
    },
    "definitions": {
        "handler.AlertsResponse": {
            "type": "object",
            "properties": {
                "alerts": {
                    "type": "array",
                    "items": {"$ref": "#/definitions/reminder.Alert"}
                }
            }
        },
        "reminder.Alert": {
            "type": "object",
            "properties": {
                "key": {"type": "string"},
                "type": {"type": "string", "enum": ["medicine", "appointment"]},
                "userId": {"type": "string"},
                "medicineId": {"type": "string"},
                "medicineName": {"type": "string"},
                "foodTiming": {"type": "string"},
                "appointmentId": {"type": "string"},
                "doctorName": {"type": "string"},
                "hospitalName": {"type": "string"},
                "date": {"type": "string"},
                "time": {"type": "string"},
                "fireAt": {"type": "string", "format": "date-time"},
                "producedAt": {"type": "string", "format": "date-time"},
                "expiresAt": {"type": "string", "format": "date-time"}
            }
        },
        "respond.ErrorResponse": {
            "type": "object",
            "properties": {
                "error": {
                    "type": "object",
                    "properties": {
                        "code": {"type": "string"},
                        "message": {"type": "string"},
                        "detail": {"type": "string"}
                    }
                }
            }
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0.0",
	Host:             "localhost:8000",
	BasePath:         "/api/v1",
	Schemes:          []string{"http", "https"},
	Title:            "MediTrack Alerts API",
	Description:      "Medicine and appointment reminder alerts for polling clients.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
