package product

import (
	"ddd-commerce/domain/product"
	"ddd-commerce/domain/shared"
)

func toStockSpecs(stocks []StockRequest) ([]product.StockSpec, error) {
	specs := make([]product.StockSpec, len(stocks))
	for i, s := range stocks {
		loc, err := shared.NewLocation(s.Longitude, s.Latitude)
		if err != nil {
			return nil, err
		}
		specs[i] = product.StockSpec{Location: loc, Quantity: s.Quantity}
	}
	return specs, nil
}

func toProductResponse(p *product.Product) *ProductResponse {
	stocks := p.Stocks()
	stockResponses := make([]StockResponse, len(stocks))
	for i, s := range stocks {
		stockResponses[i] = StockResponse{
			Longitude: s.Location().Longitude(),
			Latitude:  s.Location().Latitude(),
			Quantity:  s.Quantity(),
		}
	}

	return &ProductResponse{
		ID:   p.ID(),
		Name: p.Name(),
		Price: MoneyResponse{
			Amount:   p.Price().Amount(),
			Currency: p.Price().Currency(),
		},
		Weight:        p.Weight().Value(),
		Stocks:        stockResponses,
		TotalQuantity: p.TotalQuantity(),
		Version:       p.Version(),
		CreatedAt:     p.CreatedAt(),
		UpdatedAt:     p.UpdatedAt(),
	}
}

func toProductResponses(products []*product.Product) []*ProductResponse {
	responses := make([]*ProductResponse, len(products))
	for i, p := range products {
		responses[i] = toProductResponse(p)
	}
	return responses
}
