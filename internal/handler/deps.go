package handler

import (
	"parley/internal/app/chat"
	"parley/internal/app/storage"
	"parley/internal/app/store"
	"parley/internal/configs"
)

// AppDeps bundles the shared dependencies handed to every handler constructor.
type AppDeps struct {
	Hub    *chat.Hub
	Config *configs.AppConfig
	Store  *store.Store
	Files  storage.Service
}
