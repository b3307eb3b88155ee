// Package graphql exposes a read-only catalog query surface alongside the
// REST API. Only products and categories are reachable; carts, orders and
// accounts stay REST-only.
package graphql

import (
	"fmt"

	gql "github.com/graphql-go/graphql"

	"github.com/bloomkart/bloomkart/app/models"
	"github.com/bloomkart/bloomkart/app/repositories"
	"github.com/bloomkart/bloomkart/app/services"
	"github.com/bloomkart/bloomkart/pkg/database"
)

// NewSchema builds the catalog schema over the product and category services
// so GraphQL reads share the REST surface's caching and error mapping.
func NewSchema(products *services.ProductService, categories *services.CategoryService) (gql.Schema, error) {
	categoryType := gql.NewObject(gql.ObjectConfig{
		Name: "Category",
		Fields: gql.Fields{
			"id": &gql.Field{
				Type: gql.String,
				Resolve: func(p gql.ResolveParams) (interface{}, error) {
					return p.Source.(models.Category).ID.Hex(), nil
				},
			},
			"name": &gql.Field{
				Type: gql.String,
				Resolve: func(p gql.ResolveParams) (interface{}, error) {
					return p.Source.(models.Category).Name, nil
				},
			},
			"slug": &gql.Field{
				Type: gql.String,
				Resolve: func(p gql.ResolveParams) (interface{}, error) {
					return p.Source.(models.Category).Slug, nil
				},
			},
			"image": &gql.Field{
				Type: gql.String,
				Resolve: func(p gql.ResolveParams) (interface{}, error) {
					return p.Source.(models.Category).Image, nil
				},
			},
		},
	})

	categoryRefType := gql.NewObject(gql.ObjectConfig{
		Name: "CategoryRef",
		Fields: gql.Fields{
			"id": &gql.Field{
				Type: gql.String,
				Resolve: func(p gql.ResolveParams) (interface{}, error) {
					return p.Source.(models.CategoryRef).ID, nil
				},
			},
			"name": &gql.Field{
				Type: gql.String,
				Resolve: func(p gql.ResolveParams) (interface{}, error) {
					return p.Source.(models.CategoryRef).Name, nil
				},
			},
		},
	})

	productType := gql.NewObject(gql.ObjectConfig{
		Name: "Product",
		Fields: gql.Fields{
			"id": &gql.Field{
				Type: gql.String,
				Resolve: func(p gql.ResolveParams) (interface{}, error) {
					return p.Source.(models.Product).ID.Hex(), nil
				},
			},
			"title": &gql.Field{
				Type: gql.String,
				Resolve: func(p gql.ResolveParams) (interface{}, error) {
					return p.Source.(models.Product).Title, nil
				},
			},
			"description": &gql.Field{
				Type: gql.String,
				Resolve: func(p gql.ResolveParams) (interface{}, error) {
					return p.Source.(models.Product).Description, nil
				},
			},
			"price": &gql.Field{
				Type: gql.Float,
				Resolve: func(p gql.ResolveParams) (interface{}, error) {
					return p.Source.(models.Product).Price, nil
				},
			},
			"stock": &gql.Field{
				Type: gql.Int,
				Resolve: func(p gql.ResolveParams) (interface{}, error) {
					return p.Source.(models.Product).Stock, nil
				},
			},
			"images": &gql.Field{
				Type: gql.NewList(gql.String),
				Resolve: func(p gql.ResolveParams) (interface{}, error) {
					return p.Source.(models.Product).Images, nil
				},
			},
			"category": &gql.Field{
				Type: categoryRefType,
				Resolve: func(p gql.ResolveParams) (interface{}, error) {
					return p.Source.(models.Product).Category, nil
				},
			},
		},
	})

	queryType := gql.NewObject(gql.ObjectConfig{
		Name: "Query",
		Fields: gql.Fields{
			"products": &gql.Field{
				Type: gql.NewList(productType),
				Args: gql.FieldConfigArgument{
					"category":     &gql.ArgumentConfig{Type: gql.String},
					"categoryName": &gql.ArgumentConfig{Type: gql.String},
					"q":            &gql.ArgumentConfig{Type: gql.String},
					"sort":         &gql.ArgumentConfig{Type: gql.String},
					"page":         &gql.ArgumentConfig{Type: gql.Int},
					"perPage":      &gql.ArgumentConfig{Type: gql.Int},
				},
				Resolve: func(p gql.ResolveParams) (interface{}, error) {
					filter := repositories.ProductFilter{
						CategoryID:   stringArg(p, "category"),
						CategoryName: stringArg(p, "categoryName"),
						Query:        stringArg(p, "q"),
						Sort:         stringArg(p, "sort"),
						Page:         intArg(p, "page"),
						PerPage:      intArg(p, "perPage"),
					}
					items, _, err := products.List(p.Context, filter)
					return items, err
				},
			},
			"product": &gql.Field{
				Type: productType,
				Args: gql.FieldConfigArgument{
					"id": &gql.ArgumentConfig{Type: gql.NewNonNull(gql.String)},
				},
				Resolve: func(p gql.ResolveParams) (interface{}, error) {
					id, err := database.ParseID(stringArg(p, "id"))
					if err != nil {
						return nil, fmt.Errorf("malformed product id")
					}
					prod, err := products.Get(p.Context, id)
					if err != nil {
						return nil, err
					}
					return *prod, nil
				},
			},
			"categories": &gql.Field{
				Type: gql.NewList(categoryType),
				Resolve: func(p gql.ResolveParams) (interface{}, error) {
					return categories.List(p.Context)
				},
			},
		},
	})

	return gql.NewSchema(gql.SchemaConfig{Query: queryType})
}

func stringArg(p gql.ResolveParams, name string) string {
	s, _ := p.Args[name].(string)
	return s
}

func intArg(p gql.ResolveParams, name string) int {
	n, _ := p.Args[name].(int)
	return n
}
