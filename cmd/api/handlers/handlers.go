package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"nutri-lens/cmd/api/dto"
	"nutri-lens/cmd/api/services"
	"nutri-lens/config"
	"nutri-lens/errs"
)

// respondError maps err to its status code and stable reason.
func respondError(c *gin.Context, err error) {
	status := errs.HTTPStatus(err)
	body := dto.ErrorResponseDTO{Error: errs.Reason(err)}
	if status < http.StatusInternalServerError {
		body.Message = err.Error()
	} else {
		config.Logger.Errorf("%s %s failed: %v", c.Request.Method, c.FullPath(), err)
	}
	c.Error(err)
	c.JSON(status, body)
}

func currentUser(c *gin.Context) primitive.ObjectID {
	id, _ := c.Get("user_id")
	oid, _ := id.(primitive.ObjectID)
	return oid
}

func bindJSON(c *gin.Context, v any) bool {
	if err := c.ShouldBindJSON(v); err != nil {
		c.JSON(http.StatusBadRequest, dto.ErrorResponseDTO{Error: "invalid_input", Message: err.Error()})
		return false
	}
	return true
}

// SubmitProductHandler godoc
// @Summary      Submit a product page
// @Description  Runs the ingest pipeline inline (201) or queues it for the processor (202)
// @Tags         products
// @Param        X-User-Id  header  string  true  "User ObjectID"
// @Param        body  body  dto.SubmitProductRequest  true  "Product page"
// @Produce      json
// @Success      201  {object}  dto.SubmitProductResponse
// @Success      202  {object}  dto.SubmitProductResponse
// @Failure      400  {object}  dto.ErrorResponseDTO
// @Failure      409  {object}  dto.ErrorResponseDTO
// @Failure      422  {object}  dto.ErrorResponseDTO
// @Router       /products [post]
func SubmitProductHandler(svc *services.ProductService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req dto.SubmitProductRequest
		if !bindJSON(c, &req) {
			return
		}
		res, err := svc.Submit(c.Request.Context(), req.URL, currentUser(c))
		if err != nil {
			respondError(c, err)
			return
		}
		if res.Queued {
			c.JSON(http.StatusAccepted, dto.SubmitProductResponse{Status: dto.SubmitStatusQueued, RequestID: res.RequestID})
			return
		}
		c.JSON(http.StatusCreated, dto.SubmitProductResponse{Status: dto.SubmitStatusCreated, ProductID: res.ProductID.Hex()})
	}
}

// ListProductsHandler godoc
// @Summary      List products
// @Tags         products
// @Param        page        query  int       false  "Page number (1-based)"
// @Param        page_size   query  int       false  "Page size (<=100)"
// @Param        categories  query  []string  false  "Categories (OR match)"
// @Produce      json
// @Router       /products [get]
func ListProductsHandler(svc *services.ProductService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var in services.ListProductsInput
		in.Page, _ = strconv.Atoi(c.DefaultQuery("page", "1"))
		in.PageSize, _ = strconv.Atoi(c.DefaultQuery("page_size", "20"))
		in.Categories = c.QueryArray("categories")

		page, err := svc.List(c.Request.Context(), in)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, page)
	}
}

// GetProductHandler godoc
// @Summary      Get product by id
// @Tags         products
// @Param        id   path   string  true  "ObjectID"
// @Produce      json
// @Failure      404  {object}  dto.ErrorResponseDTO
// @Router       /products/{id} [get]
func GetProductHandler(svc *services.ProductService) gin.HandlerFunc {
	return func(c *gin.Context) {
		p, err := svc.Get(c.Request.Context(), c.Param("id"))
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, p)
	}
}

// GetProductOverviewHandler godoc
// @Summary      Product card with nutrition, categories and leading ingredients
// @Tags         products
// @Param        id   path   string  true  "ObjectID"
// @Produce      json
// @Router       /products/{id}/overview [get]
func GetProductOverviewHandler(svc *services.ProductService) gin.HandlerFunc {
	return func(c *gin.Context) {
		o, err := svc.Overview(c.Request.Context(), c.Param("id"))
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, o)
	}
}

// GetPersonalizedOverviewHandler godoc
// @Summary      The caller's personalized overview of a product
// @Description  Served from cache when present. 204 when generation failed.
// @Tags         products
// @Param        X-User-Id  header  string  true  "User ObjectID"
// @Param        id   path   string  true  "ObjectID"
// @Produce      json
// @Success      200  {object}  models.PersonalizedOverview
// @Success      204
// @Failure      404  {object}  dto.ErrorResponseDTO
// @Router       /products/{id}/personalized [get]
func GetPersonalizedOverviewHandler(svc *services.ProductService) gin.HandlerFunc {
	return func(c *gin.Context) {
		o, err := svc.Personalized(c.Request.Context(), currentUser(c), c.Param("id"))
		if err != nil {
			respondError(c, err)
			return
		}
		if o == nil {
			c.Status(http.StatusNoContent)
			return
		}
		c.JSON(http.StatusOK, o)
	}
}

// GetNutritionHandler godoc
// @Summary      Nutrition facts of a product
// @Tags         products
// @Param        id   path   string  true  "ObjectID"
// @Produce      json
// @Router       /products/{id}/nutrition [get]
func GetNutritionHandler(svc *services.ProductService) gin.HandlerFunc {
	return func(c *gin.Context) {
		n, err := svc.Nutrition(c.Request.Context(), c.Param("id"))
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, n)
	}
}

// ListIngredientsHandler godoc
// @Summary      Ingredients of a product in label order
// @Tags         products
// @Param        id     path   string  true   "ObjectID"
// @Param        limit  query  int     false  "Maximum ingredients (0 = all)"
// @Produce      json
// @Router       /products/{id}/ingredients [get]
func ListIngredientsHandler(svc *services.ProductService) gin.HandlerFunc {
	return func(c *gin.Context) {
		limit, _ := strconv.ParseInt(c.DefaultQuery("limit", "0"), 10, 64)
		list, err := svc.Ingredients(c.Request.Context(), c.Param("id"), limit)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, list)
	}
}

// ListClaimsHandler godoc
// @Summary      Label claims of a product with their verification status
// @Tags         products
// @Param        id   path   string  true  "ObjectID"
// @Produce      json
// @Router       /products/{id}/claims [get]
func ListClaimsHandler(svc *services.ProductService) gin.HandlerFunc {
	return func(c *gin.Context) {
		list, err := svc.Claims(c.Request.Context(), c.Param("id"))
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, list)
	}
}

// ListAllergensHandler godoc
// @Summary      Allergen names of a product
// @Tags         products
// @Param        id   path   string  true  "ObjectID"
// @Produce      json
// @Success      200  {object}  dto.NamesDTO
// @Router       /products/{id}/allergens [get]
func ListAllergensHandler(svc *services.ProductService) gin.HandlerFunc {
	return func(c *gin.Context) {
		names, err := svc.Allergens(c.Request.Context(), c.Param("id"))
		if err != nil {
			respondError(c, err)
			return
		}
		if names == nil {
			names = []string{}
		}
		c.JSON(http.StatusOK, dto.NamesDTO{Names: names})
	}
}

// ListCategoriesHandler godoc
// @Summary      Every known category
// @Tags         categories
// @Produce      json
// @Success      200  {object}  dto.CategoriesDTO
// @Router       /categories [get]
func ListCategoriesHandler(svc *services.ProductService) gin.HandlerFunc {
	return func(c *gin.Context) {
		names, err := svc.Categories(c.Request.Context())
		if err != nil {
			respondError(c, err)
			return
		}
		if names == nil {
			names = []string{}
		}
		c.JSON(http.StatusOK, dto.CategoriesDTO{Categories: names})
	}
}
