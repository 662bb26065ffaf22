package controllers

import (
	"github.com/gin-gonic/gin"

	"github.com/aagaur/studiocms/records"
	"github.com/aagaur/studiocms/utils"
)

// StatsController reports how many records each collection holds.
type StatsController struct {
	services []*records.Service
}

func NewStatsController(services ...*records.Service) *StatsController {
	return &StatsController{services: services}
}

// GetStats never fails as a whole; a collection that cannot be counted reports 0.
func (s *StatsController) GetStats(ctx *gin.Context) {
	counts := gin.H{}
	for _, svc := range s.services {
		n, err := svc.Count(ctx.Request.Context())
		if err != nil {
			utils.Sugar.Warnf("count %s failed: %v", svc.Collection().Name, err)
			n = 0
		}
		counts[svc.Collection().Name] = n
	}
	utils.Success(ctx, counts)
}
