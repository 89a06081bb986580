// Package schema builds the JSON Schema documents the schema command
// prints. Agents load this once to learn the write payload shapes and
// the canonical command invocations, so the output is stable and ordered.
package schema

import "raindrip/internal/toon"

func obj(members ...toon.Member) toon.Object { return toon.Object(members) }

func m(key string, value any) toon.Member { return toon.Member{Key: key, Value: value} }

func prop(typ, desc string) toon.Object {
	o := obj(m("type", typ))
	if desc != "" {
		o = append(o, m("description", desc))
	}
	return o
}

func arrayProp(itemType, desc string) toon.Object {
	o := obj(m("type", "array"), m("items", obj(m("type", itemType))))
	if desc != "" {
		o = append(o, m("description", desc))
	}
	return o
}

func collectionRef(desc string) toon.Object {
	return obj(
		m("type", "object"),
		m("properties", obj(m("$id", prop("integer", "Collection ID")))),
		m("required", []any{"$id"}),
		m("description", desc),
	)
}

func raindropSchema() toon.Object {
	return obj(
		m("title", "Raindrop"),
		m("type", "object"),
		m("properties", obj(
			m("_id", prop("integer", "Bookmark ID")),
			m("link", prop("string", "Bookmark URL")),
			m("title", prop("string", "")),
			m("excerpt", prop("string", "Short description")),
			m("note", prop("string", "Personal note")),
			m("tags", arrayProp("string", "")),
			m("cover", prop("string", "Cover image URL")),
			m("created", prop("string", "ISO 8601 timestamp")),
			m("lastUpdate", prop("string", "ISO 8601 timestamp")),
			m("type", prop("string", "link, article, image, video, document or audio")),
			m("important", prop("boolean", "")),
			m("collectionId", prop("integer", "Owning collection, -1 for unsorted")),
			m("domain", prop("string", "")),
			m("broken", prop("boolean", "Link no longer resolves")),
		)),
		m("required", []any{"_id", "link"}),
	)
}

func raindropUpdateSchema() toon.Object {
	return obj(
		m("title", "RaindropUpdate"),
		m("type", "object"),
		m("properties", obj(
			m("link", prop("string", "")),
			m("title", prop("string", "")),
			m("excerpt", prop("string", "")),
			m("note", prop("string", "")),
			m("tags", arrayProp("string", "Replaces the full tag list")),
			m("collectionId", prop("integer", "Move to this collection")),
			m("collection", collectionRef("Move target, batch update form")),
		)),
		m("description", "All fields optional; only supplied fields change."),
	)
}

func collectionCreateSchema() toon.Object {
	return obj(
		m("title", "CollectionCreate"),
		m("type", "object"),
		m("properties", obj(
			m("title", prop("string", "")),
			m("view", prop("string", "list, simple, grid or masonry")),
			m("public", prop("boolean", "")),
			m("parent", collectionRef("Parent collection for nesting")),
		)),
		m("required", []any{"title"}),
	)
}

func collectionUpdateSchema() toon.Object {
	return obj(
		m("title", "CollectionUpdate"),
		m("type", "object"),
		m("properties", obj(
			m("title", prop("string", "")),
			m("view", prop("string", "list, simple, grid or masonry")),
			m("public", prop("boolean", "")),
			m("parent", collectionRef("New parent collection")),
			m("expanded", prop("boolean", "")),
		)),
		m("description", "All fields optional; only supplied fields change."),
	)
}

// Document assembles the full schema payload: write payload schemas plus
// usage examples agents can copy directly.
func Document() toon.Object {
	return obj(
		m("schemas", obj(
			m("Raindrop", raindropSchema()),
			m("RaindropUpdate", raindropUpdateSchema()),
			m("CollectionCreate", collectionCreateSchema()),
			m("CollectionUpdate", collectionUpdateSchema()),
		)),
		m("usage_examples", obj(
			m("patch_update_title_tags", `raindrip patch <id> '{"title": "New Title", "tags": ["ai", "cli"]}'`),
			m("move_single_bookmark", `raindrip patch <id> '{"collectionId": <target_col_id>}'`),
			m("move_batch_bookmarks", `raindrip batch update --ids 1,2 --collection <source_col_id> '{"collection": {"$id": <target_col_id>}}'`),
			m("create_collection", `raindrip collection create "Research" --public`),
			m("set_collection_icon_search", `raindrip collection set-icon <id> "robot"`),
			m("set_collection_icon_url", `raindrip collection cover <id> "https://example.com/icon.png"`),
			m("export_backup", `raindrip export --output bookmarks.toon.zst`),
			m("complex_query", `raindrip search "python tag:important" --pretty`),
		)),
	)
}
