// Package merchstudio embeds the merchandising studio in a Go program without the HTTP host.
//
// The client searches the engine with rules disabled, lets the caller pin and hide results for
// a query, and saves the outcome as a query rule in the engine. Editing sessions are kept in
// memory and are lost when the client is closed.
//
//	client, _ := merchstudio.New(ctx, merchstudio.WithEngine("http://localhost:7700", "app", "key"))
//	defer client.Close()
//
//	st := client.Studio("products")
//	view, _ := st.Open(ctx, "laptop")
//	view, _ = st.Pin(ctx, view.ID, "sku-42", 0)
//	view, _ = st.Hide(ctx, view.ID, "sku-7")
//	saved, _, _ := st.Save(ctx, view.ID)
//	fmt.Println(saved.ObjectID) // merch-laptop-5eec0dc4
package merchstudio
