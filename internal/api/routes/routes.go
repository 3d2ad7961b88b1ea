// internal/api/routes/routes.go
package routes

import (
	"time"

	"freight-match-api-server/config"
	"freight-match-api-server/internal/api/handlers"
	"freight-match-api-server/internal/api/middleware"
	"freight-match-api-server/internal/models"
	"freight-match-api-server/internal/s3"
	"freight-match-api-server/internal/socket"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/mongo"
)

// SetupRouter wires every handler to its route group.
func SetupRouter(
	cfg config.Config,
	db *mongo.Database,
	s3Uploader *s3.Uploader,
	wsHub *socket.Hub,
	tokenTTL time.Duration,
) *gin.Engine {
	router := gin.Default()
	router.Use(gin.Recovery())

	corsConfig := cors.DefaultConfig()
	if cfg.Server.ClientOrigin != "" {
		corsConfig.AllowOrigins = []string{cfg.Server.ClientOrigin}
	} else {
		corsConfig.AllowAllOrigins = true
	}
	corsConfig.AllowHeaders = append(corsConfig.AllowHeaders, "Authorization")
	router.Use(cors.New(corsConfig))

	userHandler := &handlers.UserHandler{DB: db, TokenTTL: tokenTTL}
	loadHandler := &handlers.LoadHandler{DB: db, S3Uploader: s3Uploader}
	vehicleHandler := &handlers.VehicleHandler{DB: db, S3Uploader: s3Uploader}
	matchHandler := &handlers.MatchHandler{DB: db}
	applicationHandler := &handlers.ApplicationHandler{DB: db, Hub: wsHub}
	biddingHandler := &handlers.BiddingHandler{DB: db, Hub: wsHub}
	webSocketHandler := &handlers.WebSocketHandler{Hub: wsHub}

	apiV1 := router.Group("/api/v1")
	{
		apiV1.GET("/ws", webSocketHandler.ServeWs)

		// === PUBLIC ROUTES ===
		auth := apiV1.Group("/auth")
		{
			auth.POST("/register", userHandler.Register)
			auth.POST("/login", userHandler.Login)
		}

		// === PROTECTED ROUTES ===

		// Admin
		admin := apiV1.Group("/admin")
		admin.Use(middleware.Authenticate())
		admin.Use(middleware.Authorize(models.RoleAdmin))
		{
			admin.POST("/vehicles/:id/approve", vehicleHandler.ApproveVehicle)
		}

		authed := apiV1.Group("/")
		authed.Use(middleware.Authenticate())
		{
			authed.GET("/me", userHandler.GetMe)

			// Loads
			loads := authed.Group("/loads")
			{
				// Provider side: posting and managing loads
				providerLoads := loads.Group("/")
				providerLoads.Use(middleware.Authorize(models.RoleLoadProvider, models.RoleAdmin))
				{
					providerLoads.POST("/", loadHandler.CreateLoad)
					providerLoads.GET("/my", loadHandler.GetMyLoads)
					providerLoads.POST("/:id/materials/:materialIndex/photo", loadHandler.UploadMaterialPhoto)
					providerLoads.GET("/:id/matches", matchHandler.GetMatches)
					providerLoads.GET("/:id/applications", applicationHandler.GetApplicationsForLoad)
					providerLoads.POST("/:id/bidding-sessions", biddingHandler.CreateSession)
				}

				// Owner side: browsing and applying
				ownerLoads := loads.Group("/")
				ownerLoads.Use(middleware.Authorize(models.RoleVehicleOwner, models.RoleAdmin))
				{
					ownerLoads.GET("/open", loadHandler.GetOpenLoads)
					ownerLoads.POST("/:id/applications", applicationHandler.Apply)
				}

				loads.GET("/:id", loadHandler.GetLoad)
				loads.GET("/:id/bidding-session", biddingHandler.GetSessionForLoad)
			}

			// Vehicles
			vehicles := authed.Group("/vehicles")
			vehicles.Use(middleware.Authorize(models.RoleVehicleOwner, models.RoleAdmin))
			{
				vehicles.POST("/", vehicleHandler.CreateVehicle)
				vehicles.GET("/my", vehicleHandler.GetMyVehicles)
				vehicles.PUT("/:id/status", vehicleHandler.SetVehicleStatus)
				vehicles.POST("/:id/photo", vehicleHandler.UploadVehiclePhoto)
			}

			// Applications
			applications := authed.Group("/applications")
			{
				ownerApps := applications.Group("/")
				ownerApps.Use(middleware.Authorize(models.RoleVehicleOwner, models.RoleAdmin))
				{
					ownerApps.GET("/my", applicationHandler.GetMyApplications)
				}

				providerApps := applications.Group("/")
				providerApps.Use(middleware.Authorize(models.RoleLoadProvider, models.RoleAdmin))
				{
					providerApps.POST("/:id/accept", applicationHandler.Accept)
					providerApps.POST("/:id/reject", applicationHandler.Reject)
				}
			}

			// Bidding sessions
			sessions := authed.Group("/bidding-sessions")
			{
				ownerBids := sessions.Group("/")
				ownerBids.Use(middleware.Authorize(models.RoleVehicleOwner, models.RoleAdmin))
				{
					ownerBids.POST("/:id/bids", biddingHandler.PlaceBid)
				}

				providerBids := sessions.Group("/")
				providerBids.Use(middleware.Authorize(models.RoleLoadProvider, models.RoleAdmin))
				{
					providerBids.POST("/:id/winner", biddingHandler.SelectWinner)
				}
			}
		}
	}

	return router
}
