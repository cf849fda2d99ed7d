package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "SMA Timetable API",
        "description": "Automatic weekly timetable generation per class section",
        "version": "1.0.0"
    },
    "basePath": "/",
    "schemes": [
        "http",
        "https"
    ],
    "securityDefinitions": {
        "BearerAuth": {"type": "apiKey", "in": "header", "name": "Authorization"}
    },
    "tags": [
        {"name": "Timetables", "description": "Generation, lookup and export of weekly timetables"},
        {"name": "Operations", "description": "Health, readiness and metrics"}
    ],
    "paths": {
        "/health": {
            "get": {
                "tags": ["Operations"],
                "summary": "Health check",
                "responses": {
                    "200": {"description": "OK"}
                }
            }
        },
        "/ready": {
            "get": {
                "tags": ["Operations"],
                "summary": "Readiness check against postgres and redis",
                "responses": {
                    "200": {"description": "Ready"},
                    "503": {"description": "Degraded"}
                }
            }
        },
        "/metrics": {
            "get": {
                "tags": ["Operations"],
                "summary": "Prometheus metrics",
                "produces": ["text/plain"],
                "responses": {
                    "200": {"description": "OK"}
                }
            }
        },
        "/api/v1/timetables/generate": {
            "post": {
                "tags": ["Timetables"],
                "summary": "Generate the weekly timetable for a class section",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "X-Tenant-ID", "in": "header", "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/GenerateTimetableRequest"}}
                ],
                "responses": {
                    "200": {"description": "Generated", "schema": {"$ref": "#/definitions/GenerateTimetableEnvelope"}},
                    "202": {"description": "Queued", "schema": {"$ref": "#/definitions/GenerateAcceptedEnvelope"}},
                    "400": {"description": "Validation failed", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Session not found", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "409": {"description": "Session locked or generation in progress", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "422": {"description": "Capacity exceeded or constraints unsatisfiable", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/api/v1/timetables/runs/{id}": {
            "get": {
                "tags": ["Timetables"],
                "summary": "Status of an asynchronous generation run",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/TimetableRunEnvelope"}},
                    "404": {"description": "Not found", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/api/v1/timetables/sessions/{sessionId}/sections/{sectionId}": {
            "get": {
                "tags": ["Timetables"],
                "summary": "Stored timetable of a section",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "sessionId", "in": "path", "required": true, "type": "string"},
                    {"name": "sectionId", "in": "path", "required": true, "type": "string"},
                    {"name": "classId", "in": "query", "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/TimetableViewEnvelope"}},
                    "404": {"description": "Not found", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/api/v1/timetables/sessions/{sessionId}/sections/{sectionId}/export": {
            "get": {
                "tags": ["Timetables"],
                "summary": "Export the weekly grid as CSV or PDF",
                "security": [{"BearerAuth": []}],
                "produces": ["text/csv", "application/pdf"],
                "parameters": [
                    {"name": "sessionId", "in": "path", "required": true, "type": "string"},
                    {"name": "sectionId", "in": "path", "required": true, "type": "string"},
                    {"name": "format", "in": "query", "type": "string", "enum": ["csv", "pdf"]}
                ],
                "responses": {
                    "200": {"description": "File"},
                    "400": {"description": "Unsupported format", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Not found", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        }
    },
    "definitions": {
        "GenerateTimetableRequest": {
            "type": "object",
            "required": ["sessionId", "classId", "sectionId"],
            "properties": {
                "sessionId": {"type": "string"},
                "classId": {"type": "string"},
                "sectionId": {"type": "string"},
                "templateId": {"type": "string"},
                "async": {"type": "boolean"}
            }
        },
        "GenerateTimetableResponse": {
            "type": "object",
            "properties": {
                "success": {"type": "boolean"},
                "slotsCreated": {"type": "integer"},
                "warnings": {"type": "array", "items": {"type": "string"}},
                "levelReached": {"type": "string"},
                "placementsByLevel": {"type": "object", "additionalProperties": {"type": "integer"}},
                "fixedPlaced": {"type": "integer"},
                "templateId": {"type": "string"}
            }
        },
        "GenerateAcceptedResponse": {
            "type": "object",
            "properties": {
                "runId": {"type": "string"},
                "status": {"type": "string", "enum": ["PENDING", "RUNNING", "SUCCEEDED", "FAILED"]}
            }
        },
        "TimetableRun": {
            "type": "object",
            "properties": {
                "runId": {"type": "string"},
                "status": {"type": "string", "enum": ["PENDING", "RUNNING", "SUCCEEDED", "FAILED"]},
                "request": {"$ref": "#/definitions/GenerateTimetableRequest"},
                "result": {"$ref": "#/definitions/GenerateTimetableResponse"},
                "error": {"$ref": "#/definitions/APIError"},
                "createdAt": {"type": "string", "format": "date-time"},
                "updatedAt": {"type": "string", "format": "date-time"},
                "finishedAt": {"type": "string", "format": "date-time"}
            }
        },
        "TimetableSlot": {
            "type": "object",
            "properties": {
                "slotNumber": {"type": "integer"},
                "slotType": {"type": "string", "enum": ["REGULAR", "BREAK", "LUNCH"]},
                "subjectId": {"type": "string"},
                "teacherId": {"type": "string"},
                "startTime": {"type": "string"},
                "endTime": {"type": "string"}
            }
        },
        "TimetableDay": {
            "type": "object",
            "properties": {
                "dayOfWeek": {"type": "integer"},
                "dayName": {"type": "string"},
                "slots": {"type": "array", "items": {"$ref": "#/definitions/TimetableSlot"}}
            }
        },
        "TimetableView": {
            "type": "object",
            "properties": {
                "sessionId": {"type": "string"},
                "classId": {"type": "string"},
                "sectionId": {"type": "string"},
                "days": {"type": "array", "items": {"$ref": "#/definitions/TimetableDay"}}
            }
        },
        "APIError": {
            "type": "object",
            "properties": {
                "code": {"type": "string"},
                "message": {"type": "string"},
                "status": {"type": "integer"},
                "details": {"type": "object"}
            }
        },
        "ResponseEnvelope": {
            "type": "object",
            "properties": {
                "data": {"type": "object"},
                "error": {"$ref": "#/definitions/APIError"},
                "meta": {"type": "object"}
            }
        },
        "GenerateTimetableEnvelope": {
            "type": "object",
            "properties": {
                "data": {"$ref": "#/definitions/GenerateTimetableResponse"},
                "meta": {"type": "object"}
            }
        },
        "GenerateAcceptedEnvelope": {
            "type": "object",
            "properties": {
                "data": {"$ref": "#/definitions/GenerateAcceptedResponse"}
            }
        },
        "TimetableRunEnvelope": {
            "type": "object",
            "properties": {
                "data": {"$ref": "#/definitions/TimetableRun"}
            }
        },
        "TimetableViewEnvelope": {
            "type": "object",
            "properties": {
                "data": {"$ref": "#/definitions/TimetableView"},
                "meta": {"type": "object"}
            }
        }
    }
}`

type swaggerDoc struct{}

// ReadDoc returns the Swagger document.
func (s *swaggerDoc) ReadDoc() string {
	return docTemplate
}

func init() {
	swag.Register(swag.Name, &swaggerDoc{})
}
