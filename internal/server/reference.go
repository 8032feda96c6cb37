package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// ListHolidays is public: the signup flow needs the date list before a
// session exists.
func (s *Server) ListHolidays(c *gin.Context) {
	dates, err := s.refRepo.ListHolidayDates(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"holidays": dates})
}
