package packing

import (
	"context"

	"github.com/yanqian/packwise/internal/domain/weather"
)

// async runs fn on its own goroutine. The channel is buffered so the
// goroutine never leaks when the caller stops listening.
func async[T any](fn func() T) <-chan T {
	ch := make(chan T, 1)
	go func() {
		defer close(ch)
		ch <- fn()
	}()
	return ch
}

// GeneratePackingListAsync is the non-blocking form of Service.GeneratePackingList.
func GeneratePackingListAsync(ctx context.Context, svc Service, req Request) <-chan Response {
	return async(func() Response { return svc.GeneratePackingList(ctx, req) })
}

// GeneratePackingListRemoteAsync is the non-blocking form of Service.GeneratePackingListRemote.
func GeneratePackingListRemoteAsync(ctx context.Context, svc Service, req Request) <-chan Response {
	return async(func() Response { return svc.GeneratePackingListRemote(ctx, req) })
}

// GenerateChatResponseAsync is the non-blocking form of Service.GenerateChatResponse.
func GenerateChatResponseAsync(ctx context.Context, svc Service, req ChatRequest) <-chan ChatResponse {
	return async(func() ChatResponse { return svc.GenerateChatResponse(ctx, req) })
}

// FetchWeatherSummaryAsync is the non-blocking form of Service.FetchWeatherSummary.
func FetchWeatherSummaryAsync(ctx context.Context, svc Service, query WeatherQuery) <-chan weather.Summary {
	return async(func() weather.Summary { return svc.FetchWeatherSummary(ctx, query) })
}
