package router

import (
	"net/http"

	imageHandler "tablekeep/internal/image"
	imageService "tablekeep/internal/image/service"
	tableHandler "tablekeep/internal/table"
	tableService "tablekeep/internal/table/service"
	"tablekeep/middleware"
	"tablekeep/socket"
)

type Options struct {
	JWTSecret   string
	CORSOrigins []string
}

func Setup(opts Options, tables *tableService.TableService, images *imageService.ImageService, hub *socket.Hub) http.Handler {
	mux := http.NewServeMux()
	auth := middleware.AuthMiddleware(opts.JWTSecret)

	// WebSocket change feed
	wsHandler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userID, _ := middleware.UserID(r.Context())
		socket.ServeWs(hub, w, r, userID)
	})
	mux.Handle("/ws", auth(wsHandler))

	// REST API
	th := tableHandler.NewTableHandler(tables, hub)
	ih := imageHandler.NewImageHandler(images, hub)

	mux.Handle("/api/tables", http.HandlerFunc(th.GetTable))
	mux.Handle("/api/tables/save", auth(http.HandlerFunc(th.SaveTable)))
	mux.Handle("/api/images", http.HandlerFunc(ih.GetImages))
	mux.Handle("/api/images/save", auth(http.HandlerFunc(ih.SaveImages)))
	mux.Handle("/api/images/upload", auth(http.HandlerFunc(ih.UploadImage)))

	return middleware.CORSMiddleware(opts.CORSOrigins)(mux)
}
