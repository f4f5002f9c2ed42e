package storage

import "errors"

// ErrUserNotFound возвращается, когда пользователь не найден в хранилище
var ErrUserNotFound = errors.New("user not found")

// ErrEmailConflict возвращается, когда email уже занят
var ErrEmailConflict = errors.New("email already exists")
