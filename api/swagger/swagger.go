package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "Course Request System API",
        "description": "Enrollment-based request and response workflows for courses",
        "version": "1.0.0"
    },
    "basePath": "/api/v1",
    "schemes": [
        "http"
    ],
    "tags": [
        {"name": "Auth", "description": "Token issuance and identity"},
        {"name": "Users", "description": "User directory and class membership"},
        {"name": "Courses", "description": "Course directory and administration"},
        {"name": "Requests", "description": "Request lifecycle and responses"}
    ],
    "paths": {
        "/auth/login": {
            "post": {
                "tags": ["Auth"],
                "summary": "Authenticate and issue an access token",
                "parameters": [
                    {"in": "body", "name": "body", "required": true, "schema": {"$ref": "#/definitions/LoginRequest"}}
                ],
                "responses": {
                    "200": {"description": "Token and profile"},
                    "401": {"description": "Invalid credentials"}
                }
            }
        },
        "/auth/me": {
            "get": {
                "tags": ["Auth"],
                "summary": "Current identity",
                "security": [{"Bearer": []}],
                "responses": {
                    "200": {"description": "Profile"},
                    "401": {"description": "Unauthorized"}
                }
            }
        },
        "/users/me": {
            "get": {
                "tags": ["Users"],
                "summary": "Own profile with enrollment",
                "security": [{"Bearer": []}],
                "responses": {
                    "200": {"description": "Profile"}
                }
            }
        },
        "/users/me/name": {
            "patch": {
                "tags": ["Users"],
                "summary": "Rename self",
                "security": [{"Bearer": []}],
                "responses": {
                    "204": {"description": "Renamed"},
                    "400": {"description": "Invalid payload"}
                }
            }
        },
        "/classes/members": {
            "get": {
                "tags": ["Users"],
                "summary": "List class members by role",
                "security": [{"Bearer": []}],
                "parameters": [
                    {"in": "query", "name": "course", "type": "string", "required": true},
                    {"in": "query", "name": "term", "type": "string", "required": true},
                    {"in": "query", "name": "section", "type": "string", "required": true},
                    {"in": "query", "name": "role", "type": "string", "required": true}
                ],
                "responses": {
                    "200": {"description": "Members"},
                    "403": {"description": "Missing standing in class"}
                }
            }
        },
        "/courses": {
            "get": {
                "tags": ["Courses"],
                "summary": "Courses from own enrollment",
                "security": [{"Bearer": []}],
                "responses": {
                    "200": {"description": "Courses"}
                }
            }
        },
        "/courses/{code}/{term}": {
            "get": {
                "tags": ["Courses"],
                "summary": "Course detail",
                "security": [{"Bearer": []}],
                "parameters": [
                    {"in": "path", "name": "code", "type": "string", "required": true},
                    {"in": "path", "name": "term", "type": "string", "required": true}
                ],
                "responses": {
                    "200": {"description": "Course"},
                    "403": {"description": "Not enrolled"},
                    "404": {"description": "Unknown course"}
                }
            }
        },
        "/courses/{code}/{term}/sections": {
            "put": {
                "tags": ["Courses"],
                "summary": "Replace sections map (instructor)",
                "security": [{"Bearer": []}],
                "responses": {
                    "204": {"description": "Replaced"},
                    "403": {"description": "Not an instructor"}
                }
            }
        },
        "/courses/{code}/{term}/request-types": {
            "put": {
                "tags": ["Courses"],
                "summary": "Replace effective request types (instructor)",
                "security": [{"Bearer": []}],
                "responses": {
                    "204": {"description": "Replaced"},
                    "403": {"description": "Not an instructor"}
                }
            }
        },
        "/requests": {
            "get": {
                "tags": ["Requests"],
                "summary": "List requests by acting role",
                "security": [{"Bearer": []}],
                "parameters": [
                    {"in": "query", "name": "role", "type": "string", "required": true}
                ],
                "responses": {
                    "200": {"description": "Requests"}
                }
            },
            "post": {
                "tags": ["Requests"],
                "summary": "Create a request (student)",
                "security": [{"Bearer": []}],
                "responses": {
                    "201": {"description": "Created, returns id"},
                    "403": {"description": "No student standing in class"},
                    "404": {"description": "Unknown course or section"}
                }
            }
        },
        "/requests/export": {
            "get": {
                "tags": ["Requests"],
                "summary": "Export visible requests as CSV",
                "security": [{"Bearer": []}],
                "produces": ["text/csv"],
                "responses": {
                    "200": {"description": "CSV"}
                }
            }
        },
        "/requests/{id}": {
            "get": {
                "tags": ["Requests"],
                "summary": "Request detail (requester or class staff)",
                "security": [{"Bearer": []}],
                "parameters": [
                    {"in": "path", "name": "id", "type": "string", "required": true}
                ],
                "responses": {
                    "200": {"description": "Request"},
                    "403": {"description": "Neither requester nor staff"},
                    "404": {"description": "Unknown request"}
                }
            }
        },
        "/requests/{id}/response": {
            "post": {
                "tags": ["Requests"],
                "summary": "Attach the single response (instructor)",
                "security": [{"Bearer": []}],
                "parameters": [
                    {"in": "path", "name": "id", "type": "string", "required": true}
                ],
                "responses": {
                    "204": {"description": "Attached"},
                    "403": {"description": "Not an instructor of the class"},
                    "409": {"description": "Response already exists"}
                }
            }
        }
    },
    "securityDefinitions": {
        "Bearer": {
            "type": "apiKey",
            "name": "Authorization",
            "in": "header"
        }
    },
    "definitions": {
        "LoginRequest": {
            "type": "object",
            "required": ["email", "password"],
            "properties": {
                "email": {"type": "string"},
                "password": {"type": "string"}
            }
        },
        "APIError": {
            "type": "object",
            "properties": {
                "code": {"type": "string"},
                "message": {"type": "string"},
                "status": {"type": "integer"}
            }
        },
        "Envelope": {
            "type": "object",
            "properties": {
                "data": {"type": "object"},
                "error": {"$ref": "#/definitions/APIError"},
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
