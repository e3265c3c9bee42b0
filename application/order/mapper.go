package order

import (
	"ddd-commerce/domain/order"
	"ddd-commerce/domain/shared"
)

func toLineRequests(items []LineItemRequest) []order.LineRequest {
	requests := make([]order.LineRequest, len(items))
	for i, item := range items {
		requests[i] = order.LineRequest{ProductID: item.ProductID, Quantity: item.Quantity}
	}
	return requests
}

func toMoneyResponse(m shared.Money) MoneyResponse {
	return MoneyResponse{Amount: m.Amount(), Currency: m.Currency()}
}

func toOrderResponse(o *order.Order) *OrderResponse {
	items := o.Items()
	itemResponses := make([]OrderItemResponse, len(items))
	for i, item := range items {
		itemResponses[i] = OrderItemResponse{
			ID:          item.ID(),
			ProductID:   item.ProductID(),
			ProductName: item.ProductName(),
			Quantity:    item.Quantity(),
			UnitWeight:  item.UnitWeight().Value(),
			Weight:      item.Weight().Value(),
			UnitPrice:   toMoneyResponse(item.UnitPrice().Money()),
			Subtotal:    toMoneyResponse(item.Subtotal()),
		}
	}

	resp := &OrderResponse{
		ID:             o.ID(),
		CustomerID:     o.CustomerID(),
		Items:          itemResponses,
		TotalWeight:    o.TotalWeight().Value(),
		MaxTotalWeight: o.Policy().MaxTotal.Value(),
		Status:         string(o.Status()),
		CancelReason:   o.CancelReason(),
		Version:        o.Version(),
		CreatedAt:      o.CreatedAt(),
		UpdatedAt:      o.UpdatedAt(),
	}
	// 空订单没有币种，不返回总价
	if len(items) > 0 {
		total := toMoneyResponse(o.TotalPrice())
		resp.TotalPrice = &total
	}
	return resp
}

func toOrderResponses(orders []*order.Order) []*OrderResponse {
	responses := make([]*OrderResponse, len(orders))
	for i, o := range orders {
		responses[i] = toOrderResponse(o)
	}
	return responses
}
