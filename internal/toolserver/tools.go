package toolserver

import (
	"context"
	"fmt"
	"strings"
	"time"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"
)

// toolDef pairs a tool declaration with its handler.
type toolDef struct {
	tool    *mcpsdk.Tool
	handler mcpsdk.ToolHandler
}

// builtinTools returns the tool set the builtin server exposes. These are
// intentionally self-contained so the server works without any external
// services: useful for demos and for exercising an agent end to end.
func builtinTools() []toolDef {
	return []toolDef{
		{
			tool: &mcpsdk.Tool{
				Name:        "weather_lookup",
				Description: "Look up current weather for a location. Arguments: location (string, required), units (string, 'metric' or 'imperial', default 'metric').",
			},
			handler: weatherLookup,
		},
		{
			tool: &mcpsdk.Tool{
				Name:        "echo",
				Description: "Echo the given message back. Arguments: message (string, required).",
			},
			handler: echo,
		},
		{
			tool: &mcpsdk.Tool{
				Name:        "current_time",
				Description: "Return the current time. Arguments: timezone (IANA name, optional, default UTC).",
			},
			handler: currentTime,
		},
	}
}

// cannedWeather holds static conditions for a few well-known cities.
// Unknown locations get a generic sunny day.
var cannedWeather = map[string]struct {
	tempC      int
	conditions string
}{
	"london":        {15, "rainy"},
	"san francisco": {18, "foggy"},
	"tokyo":         {22, "partly cloudy"},
	"new york":      {25, "sunny"},
}

func weatherLookup(_ context.Context, _ *mcpsdk.ServerSession, params *mcpsdk.CallToolParamsFor[map[string]any]) (*mcpsdk.CallToolResultFor[any], error) {
	location, ok := params.Arguments["location"].(string)
	if !ok || location == "" {
		return errorResult("location parameter is required"), nil
	}

	units := "metric"
	if u, ok := params.Arguments["units"].(string); ok && u != "" {
		if u != "metric" && u != "imperial" {
			return errorResult(fmt.Sprintf("unknown units %q: use 'metric' or 'imperial'", u)), nil
		}
		units = u
	}

	weather, ok := cannedWeather[strings.ToLower(location)]
	if !ok {
		weather.tempC = 20
		weather.conditions = "sunny"
	}

	temp := weather.tempC
	symbol := "C"
	if units == "imperial" {
		temp = temp*9/5 + 32
		symbol = "F"
	}

	return textResult(fmt.Sprintf("Weather in %s: %d°%s, %s", location, temp, symbol, weather.conditions)), nil
}

func echo(_ context.Context, _ *mcpsdk.ServerSession, params *mcpsdk.CallToolParamsFor[map[string]any]) (*mcpsdk.CallToolResultFor[any], error) {
	message, ok := params.Arguments["message"].(string)
	if !ok {
		return errorResult("message parameter is required"), nil
	}
	return textResult(message), nil
}

func currentTime(_ context.Context, _ *mcpsdk.ServerSession, params *mcpsdk.CallToolParamsFor[map[string]any]) (*mcpsdk.CallToolResultFor[any], error) {
	loc := time.UTC
	if tz, ok := params.Arguments["timezone"].(string); ok && tz != "" {
		parsed, err := time.LoadLocation(tz)
		if err != nil {
			return errorResult(fmt.Sprintf("unknown timezone %q", tz)), nil
		}
		loc = parsed
	}
	return textResult(time.Now().In(loc).Format(time.RFC3339)), nil
}

func textResult(text string) *mcpsdk.CallToolResultFor[any] {
	return &mcpsdk.CallToolResultFor[any]{
		Content: []mcpsdk.Content{&mcpsdk.TextContent{Text: text}},
	}
}

func errorResult(text string) *mcpsdk.CallToolResultFor[any] {
	return &mcpsdk.CallToolResultFor[any]{
		Content: []mcpsdk.Content{&mcpsdk.TextContent{Text: text}},
		IsError: true,
	}
}
