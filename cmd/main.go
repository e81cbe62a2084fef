package main

import (
	"github.com/gin-gonic/gin"

	"github.com/mahmoodhamdi/sounds-api/internal/app"
	"github.com/mahmoodhamdi/sounds-api/internal/config"
)

func main() {
	gin.SetMode(gin.ReleaseMode)
	cfg := config.MustLoad()
	app.Run(cfg)
}
