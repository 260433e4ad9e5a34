package admin_test

import (
	"context"
	"errors"
	"fmt"
	"time"

	namedcache "github.com/karupanerura/named-cache"
	"github.com/karupanerura/named-cache/admin"
	"github.com/karupanerura/named-cache/expiration"
	"github.com/karupanerura/named-cache/locator"
)

func ExampleRegistry() {
	caches := locator.New()
	caches.Register(namedcache.NewCache("settings", expiration.FromAdd(time.Hour)))
	caches.Register(namedcache.NewCache("sessions", expiration.Sliding(time.Minute)))

	reg := admin.New(caches)
	_ = reg.RegisterCache("sessions", false)

	version := 1
	ctx := context.Background()
	err := reg.RegisterItem(ctx, admin.ItemDescriptor{
		CacheName: "settings",
		ItemKey:   "feature-flags",
		Producer: admin.ProducerFunc(func(context.Context) (string, error) {
			return fmt.Sprintf("flags v%d", version), nil
		}),
	}, true)
	if err != nil {
		fmt.Println("Error:", err)
		return
	}

	settings, _ := caches.GetCache("settings")
	flags, _ := namedcache.TryGet[string](settings, "feature-flags")
	fmt.Println(flags)

	version = 2
	_ = reg.RefreshItem(ctx, "settings", "feature-flags")
	flags, _ = namedcache.TryGet[string](settings, "feature-flags")
	fmt.Println(flags)

	err = reg.ClearCache("sessions")
	fmt.Println(errors.Is(err, admin.ErrClearDisabled), err)

	// Output:
	// flags v1
	// flags v2
	// true Cache not cleared - cache registered with destructive clear disabled: sessions
}
