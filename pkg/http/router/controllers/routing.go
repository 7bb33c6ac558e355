package controllers

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/RdZ0101/Traffic-Flow-prediction/pkg"
	"github.com/RdZ0101/Traffic-Flow-prediction/pkg/datastructure"
	helper "github.com/RdZ0101/Traffic-Flow-prediction/pkg/http/router/routerhelper"
	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	enTranslations "github.com/go-playground/validator/v10/translations/en"
	"github.com/julienschmidt/httprouter"
	"go.uber.org/zap"
)

type routingAPI struct {
	routingService RoutingService
	log            *zap.Logger
	validate       *validator.Validate
	trans          ut.Translator
}

func New(routingService RoutingService, log *zap.Logger) *routingAPI {
	validate := validator.New()
	english := en.New()
	uni := ut.New(english, english)
	trans, _ := uni.GetTranslator("en")
	_ = enTranslations.RegisterDefaultTranslations(validate, trans)

	return &routingAPI{
		routingService: routingService,
		log:            log,
		validate:       validate,
		trans:          trans,
	}
}

func (api *routingAPI) Routes(group *helper.RouteGroup) {
	group.GET("/computeRoutes", api.shortestPath)
	group.GET("/computeAlternativeRoutes", api.alternativeRoutes)
	group.GET("/intersections/:id", api.intersection)
}

// shortestPath. fastest route between two intersections at the departure time
//
//	@Summary		fastest route between two scats intersections
//	@Tags			routing
//	@Param			start			query	int		false	"start scats site"
//	@Param			target			query	int		false	"target scats site"
//	@Param			origin_lat		query	number	false	"origin latitude, used when start is empty"
//	@Param			origin_lon		query	number	false	"origin longitude"
//	@Param			destination_lat	query	number	false	"destination latitude, used when target is empty"
//	@Param			destination_lon	query	number	false	"destination longitude"
//	@Param			departure		query	string	false	"RFC3339 departure time, defaults to now"
//	@Produce		json
//	@Success		200	{object}	routeResponse
//	@Failure		400	{object}	errorResponse
//	@Failure		404	{object}	errorResponse
//	@Failure		503	{object}	errorResponse
//	@Router			/computeRoutes [get]
func (api *routingAPI) shortestPath(w http.ResponseWriter, r *http.Request, p httprouter.Params) {
	request, err := api.parseRouteRequest(r)
	if err != nil {
		api.BadRequestResponse(w, r, err)
		return
	}

	start, target, ok := api.resolveEndpoints(w, r, request)
	if !ok {
		return
	}

	route, err := api.routingService.ShortestPath(r.Context(), start, target, request.Departure)
	if err != nil {
		api.getStatusCode(w, r, err)
		return
	}

	headers := make(http.Header)

	if err := api.writeJSON(w, http.StatusOK, envelope{"data": NewRouteResponse(route)}, headers); err != nil {
		api.ServerErrorResponse(w, r, err)
		return
	}
}

// alternativeRoutes. up to k edge-disjoint routes, fastest first
//
//	@Summary		up to k edge-disjoint routes between two scats intersections
//	@Tags			routing
//	@Param			start		query	int		false	"start scats site"
//	@Param			target		query	int		false	"target scats site"
//	@Param			k			query	int		false	"number of routes, defaults to 2"
//	@Param			departure	query	string	false	"RFC3339 departure time, defaults to now"
//	@Produce		json
//	@Success		200	{object}	alternativeRoutesResponse
//	@Failure		400	{object}	errorResponse
//	@Failure		404	{object}	errorResponse
//	@Router			/computeAlternativeRoutes [get]
func (api *routingAPI) alternativeRoutes(w http.ResponseWriter, r *http.Request, p httprouter.Params) {
	request, err := api.parseRouteRequest(r)
	if err != nil {
		api.BadRequestResponse(w, r, err)
		return
	}

	start, target, ok := api.resolveEndpoints(w, r, request)
	if !ok {
		return
	}

	routes, err := api.routingService.AlternativeRoutes(r.Context(), start, target, request.K, request.Departure)
	if err != nil {
		api.getStatusCode(w, r, err)
		return
	}

	headers := make(http.Header)

	if err := api.writeJSON(w, http.StatusOK, envelope{"data": NewAlternativeRoutesResponse(routes)}, headers); err != nil {
		api.ServerErrorResponse(w, r, err)
		return
	}
}

//	@Summary	scats intersection with its neighbors
//	@Tags		routing
//	@Param		id	path	int	true	"scats site"
//	@Produce	json
//	@Success	200	{object}	intersectionResponse
//	@Failure	404	{object}	errorResponse
//	@Router		/intersections/{id} [get]
func (api *routingAPI) intersection(w http.ResponseWriter, r *http.Request, p httprouter.Params) {
	site, err := strconv.ParseInt(p.ByName("id"), 10, 64)
	if err != nil {
		api.BadRequestResponse(w, r, errors.New("id must be a valid scats site number"))
		return
	}

	v, neighbors, err := api.routingService.Intersection(datastructure.SiteID(site))
	if err != nil {
		api.getStatusCode(w, r, err)
		return
	}

	if err := api.writeJSON(w, http.StatusOK, envelope{"data": NewIntersectionResponse(v, neighbors)}, nil); err != nil {
		api.ServerErrorResponse(w, r, err)
		return
	}
}

func (api *routingAPI) parseRouteRequest(r *http.Request) (routeRequest, error) {
	var (
		request routeRequest
		err     error
	)

	query := r.URL.Query()

	if s := query.Get("start"); s != "" {
		request.Start, err = strconv.ParseInt(s, 10, 64)
		if err != nil {
			return request, errors.New("start must be a valid scats site number")
		}
	}
	if s := query.Get("target"); s != "" {
		request.Target, err = strconv.ParseInt(s, 10, 64)
		if err != nil {
			return request, errors.New("target must be a valid scats site number")
		}
	}

	coords := []struct {
		name string
		dst  *float64
		need bool
	}{
		{"origin_lat", &request.OriginLat, request.Start == 0},
		{"origin_lon", &request.OriginLon, request.Start == 0},
		{"destination_lat", &request.DestinationLat, request.Target == 0},
		{"destination_lon", &request.DestinationLon, request.Target == 0},
	}
	for _, c := range coords {
		if !c.need {
			continue
		}
		*c.dst, err = strconv.ParseFloat(query.Get(c.name), 64)
		if err != nil {
			return request, fmt.Errorf("%s is required and must be a valid float", c.name)
		}
	}

	request.Departure = time.Now()
	if s := query.Get("departure"); s != "" {
		request.Departure, err = time.Parse(time.RFC3339, s)
		if err != nil {
			return request, errors.New("departure must be an RFC3339 timestamp")
		}
	}

	request.K = pkg.DEFAULT_ALTERNATIVE_ROUTES
	if s := query.Get("k"); s != "" {
		request.K, err = strconv.Atoi(s)
		if err != nil {
			return request, errors.New("number of alternatives k must be a valid int")
		}
	}

	if err := api.validate.Struct(request); err != nil {
		vv := translateError(err, api.trans)
		vvString := []string{}
		for _, v := range vv {
			vvString = append(vvString, v.Error())
		}
		return request, fmt.Errorf("validation error: %v", vvString)
	}
	return request, nil
}

// resolveEndpoints. site numbers of the request, snapping coordinates to the nearest intersection
func (api *routingAPI) resolveEndpoints(w http.ResponseWriter, r *http.Request,
	request routeRequest) (datastructure.SiteID, datastructure.SiteID, bool) {
	start, target := datastructure.SiteID(request.Start), datastructure.SiteID(request.Target)

	var err error
	if start == 0 {
		start, err = api.routingService.NearestSite(request.OriginLat, request.OriginLon)
		if err != nil {
			api.getStatusCode(w, r, err)
			return 0, 0, false
		}
	}
	if target == 0 {
		target, err = api.routingService.NearestSite(request.DestinationLat, request.DestinationLon)
		if err != nil {
			api.getStatusCode(w, r, err)
			return 0, 0, false
		}
	}
	return start, target, true
}
