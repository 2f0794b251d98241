package hydrate

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/vango-dev/drizzle/internal/errors"
	"github.com/vango-dev/drizzle/pkg/directive"
	"github.com/vango-dev/drizzle/pkg/render"
	"github.com/vango-dev/drizzle/pkg/vdom"
)

// PayloadSelector matches the page payload scripts written by
// render.RenderPage.
const PayloadSelector = `script[type="application/json"][data-hydrate]`

// Boot does in-process what the page's hydration call does in the browser.
// For every payload script it builds the props the same way (the payload
// fields, plus "page" holding the payload and "container"), hydrates the
// named island, and then scans the whole document so directives outside
// islands come alive too. A malformed payload fails its island with E044.
func Boot(rt *directive.Runtime, opts ...Option) []*Island {
	o := buildOptions(rt, opts)
	var islands []*Island
	for _, script := range rt.Document().QuerySelectorAll(PayloadSelector) {
		name := script.Attr("data-hydrate")
		container := script.Attr("data-container")
		if container == "" {
			container = render.DefaultContainer
		}

		page := map[string]any{}
		if text := strings.TrimSpace(script.TextContent()); text != "" {
			if err := json.Unmarshal([]byte(text), &page); err != nil {
				island := &Island{Name: name, ID: o.ids.Next()}
				islands = append(islands, island.fail(o.logger, errors.New("E044").Wrap(err)))
				continue
			}
		}

		props := vdom.Props{}
		for k, v := range page {
			props[k] = v
		}
		props["page"] = page
		props["container"] = container

		islandOpts := append([]Option{}, opts...)
		if o.container == "" {
			islandOpts = append(islandOpts, WithContainer(container))
		}
		islands = append(islands, HydrateApp(rt, name, props, islandOpts...))
	}
	rt.Scan(nil)
	return islands
}

// Summary describes the outcome of Boot in one line.
func Summary(islands []*Island) string {
	parts := make([]string, 0, len(islands))
	for _, i := range islands {
		parts = append(parts, fmt.Sprintf("%s(%s)=%s", i.Name, i.ID, i.State()))
	}
	return strings.Join(parts, " ")
}
