package http

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/graphql-go/graphql"

	"github.com/interpretingapp/terpmatch/internal/core/domain"
)

// buildSchema creates the GraphQL schema wired to our services.
func buildSchema(deps *Dependencies) (graphql.Schema, error) {
	geoPointType := graphql.NewObject(graphql.ObjectConfig{
		Name: "GeoPoint",
		Fields: graphql.Fields{
			"lat": &graphql.Field{Type: graphql.Float},
			"lng": &graphql.Field{Type: graphql.Float},
		},
	})

	locationType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Location",
		Fields: graphql.Fields{
			"city":        &graphql.Field{Type: graphql.String},
			"state":       &graphql.Field{Type: graphql.String},
			"coordinates": &graphql.Field{Type: geoPointType},
		},
	})

	interpreterType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Interpreter",
		Fields: graphql.Fields{
			"id":                 &graphql.Field{Type: graphql.String},
			"name":               &graphql.Field{Type: graphql.String},
			"certifications":     &graphql.Field{Type: graphql.NewList(graphql.String)},
			"location":           &graphql.Field{Type: locationType},
			"active":             &graphql.Field{Type: graphql.Boolean},
			"expiration_date":    &graphql.Field{Type: graphql.String},
			"source":             &graphql.Field{Type: graphql.String},
			"is_platform_member": &graphql.Field{Type: graphql.Boolean},
			"rating":             &graphql.Field{Type: graphql.Float},
			"total_ratings":      &graphql.Field{Type: graphql.Int},
			"platform_verified":  &graphql.Field{Type: graphql.Boolean},
			"specialties":        &graphql.Field{Type: graphql.NewList(graphql.String)},
			"hourly_rate":        &graphql.Field{Type: graphql.Float},
			"distance_km":        &graphql.Field{Type: graphql.Float},
		},
	})

	matchResultType := graphql.NewObject(graphql.ObjectConfig{
		Name: "MatchResult",
		Fields: graphql.Fields{
			"platform_interpreters":  &graphql.Field{Type: graphql.NewList(interpreterType)},
			"directory_interpreters": &graphql.Field{Type: graphql.NewList(interpreterType)},
		},
	})

	geocodedFeatureType := graphql.NewObject(graphql.ObjectConfig{
		Name: "GeocodedFeature",
		Fields: graphql.Fields{
			"id":          &graphql.Field{Type: graphql.String},
			"place_name":  &graphql.Field{Type: graphql.String},
			"coordinates": &graphql.Field{Type: geoPointType},
		},
	})

	queryType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Query",
		Fields: graphql.Fields{
			"interpreters": &graphql.Field{
				Type:        graphql.NewList(interpreterType),
				Description: "List the interpreter directory",
				Args: graphql.FieldConfigArgument{
					"platform": &graphql.ArgumentConfig{Type: graphql.Boolean, DefaultValue: false},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					if p.Args["platform"].(bool) {
						return deps.Interpreters.ListPlatform(p.Context)
					}
					return deps.Interpreters.List(p.Context)
				},
			},
			"interpreter": &graphql.Field{
				Type:        interpreterType,
				Description: "Get an interpreter by ID",
				Args: graphql.FieldConfigArgument{
					"id": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return deps.Interpreters.GetByID(p.Context, p.Args["id"].(string))
				},
			},
			"match": &graphql.Field{
				Type:        matchResultType,
				Description: "Interpreters within a radius of a point, split by pool",
				Args: graphql.FieldConfigArgument{
					"lat":        &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.Float)},
					"lng":        &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.Float)},
					"radius_km":  &graphql.ArgumentConfig{Type: graphql.Float, DefaultValue: 0.0},
					"event_type": &graphql.ArgumentConfig{Type: graphql.String, DefaultValue: ""},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					query := &domain.MatchQuery{
						EventType: domain.EventType(p.Args["event_type"].(string)),
						Date:      time.Now(),
						Location: domain.GeoPoint{
							Lat: p.Args["lat"].(float64),
							Lng: p.Args["lng"].(float64),
						},
					}
					return deps.Matches.Find(p.Context, query, p.Args["radius_km"].(float64))
				},
			},
			"geocode": &graphql.Field{
				Type:        graphql.NewList(geocodedFeatureType),
				Description: "Forward geocode a free-text address",
				Args: graphql.FieldConfigArgument{
					"query": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
					"limit": &graphql.ArgumentConfig{Type: graphql.Int, DefaultValue: 5},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return deps.Locations.SearchAddress(p.Context,
						p.Args["query"].(string), p.Args["limit"].(int))
				},
			},
		},
	})

	return graphql.NewSchema(graphql.SchemaConfig{
		Query: queryType,
	})
}

// GraphQLHandler serves the GraphQL endpoint.
func GraphQLHandler(deps *Dependencies) fiber.Handler {
	schema, err := buildSchema(deps)
	if err != nil {
		// This would be a programming error in the schema definition
		panic("graphql schema build: " + err.Error())
	}

	type gqlRequest struct {
		Query         string                 `json:"query"`
		OperationName string                 `json:"operationName"`
		Variables     map[string]interface{} `json:"variables"`
	}

	return func(c *fiber.Ctx) error {
		var req gqlRequest
		if err := c.BodyParser(&req); err != nil {
			return c.Status(400).JSON(fiber.Map{"error": "invalid request body"})
		}

		result := graphql.Do(graphql.Params{
			Schema:         schema,
			RequestString:  req.Query,
			VariableValues: req.Variables,
			OperationName:  req.OperationName,
			Context:        c.Context(),
		})

		return c.JSON(result)
	}
}
