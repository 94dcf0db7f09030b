package endpoint

import (
	"fmt"
	"math"
	"sort"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/medisync/hospital-api/model"
	"github.com/medisync/hospital-api/util"
)

const (
	donorSearchRadiusKm = 10.0
	earthRadiusKm       = 6371.0
)

// DonorMatch is a donor candidate within the search radius.
type DonorMatch struct {
	FullName   string  `json:"full_name"`
	BloodGroup string  `json:"blood_group"`
	DistanceKm float64 `json:"distance_km"`
}

// haversineKm computes the great-circle distance between two points in kilometers.
func haversineKm(lat1, lng1, lat2, lng2 float64) float64 {
	toRad := func(deg float64) float64 { return deg * math.Pi / 180 }
	dLat := toRad(lat2 - lat1)
	dLng := toRad(lng2 - lng1)
	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(toRad(lat1))*math.Cos(toRad(lat2))*math.Sin(dLng/2)*math.Sin(dLng/2)
	return 2 * earthRadiusKm * math.Asin(math.Sqrt(a))
}

// boundingBox returns the lat/lng bounds of a square circumscribing the
// search circle. Used as a cheap SQL prefilter before the exact distance check.
func boundingBox(lat, lng, radiusKm float64) (minLat, maxLat, minLng, maxLng float64) {
	latDelta := radiusKm / 111.0
	lngDelta := latDelta
	if cosLat := math.Cos(lat * math.Pi / 180); cosLat > 0.01 {
		lngDelta = radiusKm / (111.0 * cosLat)
	}
	return lat - latDelta, lat + latDelta, lng - lngDelta, lng + lngDelta
}

func parseCoordinate(c *gin.Context, name string) (float64, error) {
	raw := c.Query(name)
	if raw == "" {
		return 0, fmt.Errorf("%s query parameter is required", name)
	}
	value, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, fmt.Errorf("%s must be a valid number", name)
	}
	return value, nil
}

// FindDonors godoc
// @Summary      Find nearby blood donors
// @Description  Returns patients with a matching blood group within 10 km, nearest first
// @Tags         Donor
// @Accept       json
// @Produce      json
// @Param        lng query number true "Longitude of the search center"
// @Param        lat query number true "Latitude of the search center"
// @Param        bloodGroup query string true "Blood group to match"
// @Success      200 {object} util.APIResponse{data=[]DonorMatch} "Donors retrieved"
// @Failure      400 {object} util.APIResponse "Missing or invalid query parameters"
// @Failure      500 {object} util.APIResponse "Server error"
// @Router       /donors [get]
func FindDonors(c *gin.Context) {
	lng, err := parseCoordinate(c, "lng")
	if err != nil {
		util.CallUserError(c, util.APIErrorParams{Msg: err.Error(), Err: err})
		return
	}
	lat, err := parseCoordinate(c, "lat")
	if err != nil {
		util.CallUserError(c, util.APIErrorParams{Msg: err.Error(), Err: err})
		return
	}
	bloodGroup := c.Query("bloodGroup")
	if bloodGroup == "" {
		err := fmt.Errorf("bloodGroup query parameter is required")
		util.CallUserError(c, util.APIErrorParams{Msg: err.Error(), Err: err})
		return
	}
	if !util.Contains(bloodGroup, model.BloodGroups) {
		err := fmt.Errorf("unknown blood group %q", bloodGroup)
		util.CallUserError(c, util.APIErrorParams{Msg: "Invalid blood group", Err: err})
		return
	}

	db, ok := getDBOrRespond(c)
	if !ok {
		return
	}

	minLat, maxLat, minLng, maxLng := boundingBox(lat, lng, donorSearchRadiusKm)

	var candidates []model.User
	err = db.Where("blood_group = ?", bloodGroup).
		Where("latitude BETWEEN ? AND ?", minLat, maxLat).
		Where("longitude BETWEEN ? AND ?", minLng, maxLng).
		Where("latitude != 0 OR longitude != 0").
		Find(&candidates).Error
	if err != nil {
		util.CallServerError(c, util.APIErrorParams{Msg: "Failed to search donors", Err: err})
		return
	}

	donors := make([]DonorMatch, 0, len(candidates))
	for _, candidate := range candidates {
		distance := haversineKm(lat, lng, candidate.Latitude, candidate.Longitude)
		if distance > donorSearchRadiusKm {
			continue
		}
		donors = append(donors, DonorMatch{
			FullName:   candidate.FullName,
			BloodGroup: candidate.BloodGroup,
			DistanceKm: math.Round(distance*100) / 100,
		})
	}
	sort.Slice(donors, func(i, j int) bool { return donors[i].DistanceKm < donors[j].DistanceKm })

	util.CallSuccessOK(c, util.APISuccessParams{
		Msg:  "Donors retrieved",
		Data: map[string]interface{}{"total": len(donors), "donors": donors},
	})
}
