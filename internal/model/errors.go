package model

import "errors"

// Доменные ошибки. На границе HTTP транслируются в статусы:
// 400 (InvalidURL, AliasTaken, EmailTaken, InvalidCredentials),
// 401 (Unauthenticated), 404 (LinkNotFound, UserNotFound), 410 (LinkExpired).
var (
	ErrInvalidURL         = errors.New("invalid URL")
	ErrAliasTaken         = errors.New("alias already exists")
	ErrEmailTaken         = errors.New("email already registered")
	ErrInvalidCredentials = errors.New("incorrect email or password")
	ErrUnauthenticated    = errors.New("not authenticated")
	ErrLinkNotFound       = errors.New("link not found")
	ErrUserNotFound       = errors.New("user not found")
	ErrLinkExpired        = errors.New("link expired")
)
