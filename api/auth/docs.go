// Package auth holds the OpenAPI document served at /swagger/. It mirrors
// the swag annotations on internal/auth/http and can be regenerated with
//
//	swag init -g internal/auth/http/router.go -o api/auth --outputTypes go
package auth

import "github.com/swaggo/swag"

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
        "/token/": {
            "post": {
                "tags": ["Session"],
                "summary": "Log in",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "parameters": [
                    {"in": "body", "name": "body", "required": true, "schema": {"$ref": "#/definitions/authsdk.LoginRequest"}}
                ],
                "responses": {
                    "200": {"description": "detail, user", "schema": {"$ref": "#/definitions/authsdk.LoginResponse"}},
                    "401": {"description": "Неверные учетные данные", "schema": {"$ref": "#/definitions/authsdk.DetailResponse"}},
                    "429": {"description": "Request was throttled", "schema": {"$ref": "#/definitions/authsdk.DetailResponse"}}
                }
            }
        },
        "/token/refresh/": {
            "post": {
                "tags": ["Session"],
                "summary": "Refresh the access token",
                "produces": ["application/json"],
                "responses": {
                    "200": {"description": "Token refreshed successfully", "schema": {"$ref": "#/definitions/authsdk.DetailResponse"}},
                    "401": {"description": "Refresh token not found, or invalid or expired", "schema": {"$ref": "#/definitions/authsdk.DetailResponse"}}
                }
            }
        },
        "/logout/": {
            "post": {
                "tags": ["Session"],
                "summary": "Log out",
                "produces": ["application/json"],
                "responses": {
                    "200": {"description": "Logout successful", "schema": {"$ref": "#/definitions/authsdk.DetailResponse"}}
                }
            }
        },
        "/user/": {
            "get": {
                "security": [{"CookieAuth": []}],
                "tags": ["User"],
                "summary": "Current user",
                "produces": ["application/json"],
                "responses": {
                    "200": {"description": "id, username, email, profile", "schema": {"$ref": "#/definitions/authsdk.UserResponse"}},
                    "401": {"description": "Not authenticated", "schema": {"$ref": "#/definitions/authsdk.DetailResponse"}}
                }
            },
            "patch": {
                "security": [{"CookieAuth": [], "CSRFToken": []}],
                "tags": ["User"],
                "summary": "Update profile",
                "consumes": ["application/json", "multipart/form-data"],
                "produces": ["application/json"],
                "parameters": [
                    {"in": "body", "name": "body", "schema": {"$ref": "#/definitions/authsdk.UpdateProfileRequest"}}
                ],
                "responses": {
                    "200": {"description": "Updated user", "schema": {"$ref": "#/definitions/authsdk.UserResponse"}},
                    "400": {"description": "Field errors"},
                    "401": {"description": "Not authenticated", "schema": {"$ref": "#/definitions/authsdk.DetailResponse"}},
                    "403": {"description": "CSRF Failed", "schema": {"$ref": "#/definitions/authsdk.DetailResponse"}}
                }
            }
        },
        "/profile/update/": {
            "patch": {
                "security": [{"CookieAuth": [], "CSRFToken": []}],
                "tags": ["User"],
                "summary": "Update profile",
                "consumes": ["multipart/form-data", "application/json"],
                "produces": ["application/json"],
                "parameters": [
                    {"in": "formData", "name": "username", "type": "string"},
                    {"in": "formData", "name": "app_header", "type": "string"},
                    {"in": "formData", "name": "image", "type": "file"}
                ],
                "responses": {
                    "200": {"description": "Updated user", "schema": {"$ref": "#/definitions/authsdk.UserResponse"}},
                    "400": {"description": "Field errors"},
                    "401": {"description": "Not authenticated", "schema": {"$ref": "#/definitions/authsdk.DetailResponse"}},
                    "403": {"description": "CSRF Failed", "schema": {"$ref": "#/definitions/authsdk.DetailResponse"}}
                }
            }
        },
        "/register/": {
            "post": {
                "tags": ["User"],
                "summary": "Register",
                "consumes": ["application/json", "application/x-www-form-urlencoded"],
                "produces": ["application/json"],
                "parameters": [
                    {"in": "body", "name": "body", "required": true, "schema": {"$ref": "#/definitions/authsdk.RegisterRequest"}}
                ],
                "responses": {
                    "201": {"description": "id, email, username", "schema": {"$ref": "#/definitions/authsdk.RegisterResponse"}},
                    "400": {"description": "Field errors"}
                }
            }
        },
        "/livez": {
            "get": {
                "tags": ["Health"],
                "summary": "Health Check Endpoint",
                "produces": ["application/json"],
                "responses": {
                    "200": {"description": "status, uptime, version", "schema": {"$ref": "#/definitions/authsdk.HealthResponse"}}
                }
            }
        },
        "/readyz": {
            "get": {
                "tags": ["Health"],
                "summary": "Readiness Check Endpoint",
                "produces": ["application/json"],
                "responses": {
                    "200": {"description": "status, uptime, version, checks", "schema": {"$ref": "#/definitions/authsdk.HealthResponse"}},
                    "503": {"description": "service not ready", "schema": {"$ref": "#/definitions/authsdk.HealthResponse"}}
                }
            }
        }
    },
    "definitions": {
        "authsdk.DetailResponse": {
            "type": "object",
            "properties": {"detail": {"type": "string"}}
        },
        "authsdk.LoginRequest": {
            "type": "object",
            "properties": {"email": {"type": "string"}, "password": {"type": "string"}}
        },
        "authsdk.LoginResponse": {
            "type": "object",
            "properties": {"detail": {"type": "string"}, "user": {"$ref": "#/definitions/authsdk.UserResponse"}}
        },
        "authsdk.ProfileResponse": {
            "type": "object",
            "properties": {"app_header": {"type": "string"}, "image": {"type": "string"}}
        },
        "authsdk.UserResponse": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "username": {"type": "string"},
                "email": {"type": "string"},
                "profile": {"$ref": "#/definitions/authsdk.ProfileResponse"}
            }
        },
        "authsdk.UpdateProfileRequest": {
            "type": "object",
            "properties": {"username": {"type": "string"}, "app_header": {"type": "string"}}
        },
        "authsdk.RegisterRequest": {
            "type": "object",
            "properties": {
                "email": {"type": "string"},
                "username": {"type": "string"},
                "password": {"type": "string"},
                "password2": {"type": "string"}
            }
        },
        "authsdk.RegisterResponse": {
            "type": "object",
            "properties": {"id": {"type": "string"}, "email": {"type": "string"}, "username": {"type": "string"}}
        },
        "authsdk.HealthChecks": {
            "type": "object",
            "properties": {"database": {"type": "string"}, "revocations": {"type": "string"}}
        },
        "authsdk.HealthResponse": {
            "type": "object",
            "properties": {
                "status": {"type": "string"},
                "uptime": {"type": "string"},
                "version": {"type": "string"},
                "checks": {"$ref": "#/definitions/authsdk.HealthChecks"}
            }
        }
    },
    "securityDefinitions": {
        "CookieAuth": {"type": "apiKey", "name": "access", "in": "cookie"},
        "CSRFToken": {"type": "apiKey", "name": "X-CSRFToken", "in": "header"}
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "0.1.0",
	Host:             "localhost:8000",
	BasePath:         "/",
	Schemes:          []string{"http", "https"},
	Title:            "Backrose Authentication API",
	Description:      "Cookie-based JWT sessions for the rose garden catalog.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
