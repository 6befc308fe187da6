package api

import (
	"net/http"

	"avrctl/pkg/database"
	"avrctl/pkg/models"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// Deps bundles everything the router needs.
type Deps struct {
	DB        *gorm.DB
	Auth      *JwtAuth
	Execute   *ExecuteHandler
	Discovery interface{ Trigger() }
}

// Register wires all routes onto the engine. Execution and read access are
// open; authoring the receiver catalog requires an admin token.
func Register(r *gin.Engine, deps Deps) {
	errorLogRepo := database.NewGormRepository[models.ErrorLog](deps.DB)
	r.Use(ErrorLogger(errorLogRepo))

	apiGroup := r.Group("/api/v1")
	{
		apiGroup.GET("/health", func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{"status": "healthy"})
		})
		apiGroup.POST("/login", deps.Auth.LoginHandler)

		// Control surface
		apiGroup.POST("/execute", deps.Execute.Execute)
		apiGroup.POST("/power/:action", deps.Execute.Power)
		apiGroup.GET("/receivers/by-model/:model/commands", deps.Execute.Commands)
		apiGroup.GET("/status", deps.Execute.Status)

		apiGroup.POST("/discovery/scan", func(c *gin.Context) {
			deps.Discovery.Trigger()
			c.JSON(http.StatusAccepted, gin.H{"message": "scan scheduled"})
		})

		// Read-only views of scan results and failure history
		NewReadOnlyHandler(database.NewGormRepository[models.DiscoveredReceiver](deps.DB)).
			RegisterRoutes(apiGroup, "/discovered")
		NewReadOnlyHandler(errorLogRepo).RegisterRoutes(apiGroup, "/errors")

		// Authoring surface
		admin := apiGroup.Group("", deps.Auth.Middleware())
		{
			NewCrudHandler(database.NewGormRepository[models.Receiver](deps.DB)).
				RegisterRoutes(admin, "/receivers")
			NewCrudHandler(database.NewGormRepository[models.Command](deps.DB)).
				RegisterRoutes(admin, "/commands")
			NewCrudHandler(database.NewGormRepository[models.CommandParameter](deps.DB)).
				RegisterRoutes(admin, "/parameters")
		}
	}
}
