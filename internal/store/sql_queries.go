package store

const (
	itemColumns = `
		id,
		remote_id,
		name,
		category,
		brand,
		color,
		size,
		condition,
		tags,
		is_favorite,
		wear_count,
		last_worn,
		has_blob,
		image_url,
		last_modified,
		needs_sync,
		is_deleted,
		sync_error`

	saveItem = `
		INSERT INTO items (
			id,
			remote_id,
			name,
			category,
			brand,
			color,
			size,
			condition,
			tags,
			is_favorite,
			wear_count,
			last_worn,
			has_blob,
			image_url,
			last_modified,
			needs_sync,
			is_deleted,
			sync_error
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18)
		ON CONFLICT (id) DO UPDATE SET
			remote_id     = excluded.remote_id,
			name          = excluded.name,
			category      = excluded.category,
			brand         = excluded.brand,
			color         = excluded.color,
			size          = excluded.size,
			condition     = excluded.condition,
			tags          = excluded.tags,
			is_favorite   = excluded.is_favorite,
			wear_count    = excluded.wear_count,
			last_worn     = excluded.last_worn,
			has_blob      = excluded.has_blob,
			image_url     = excluded.image_url,
			last_modified = excluded.last_modified,
			needs_sync    = excluded.needs_sync,
			is_deleted    = excluded.is_deleted,
			sync_error    = excluded.sync_error;`

	applyRemoteItem = `
		INSERT INTO items (
			id,
			remote_id,
			name,
			category,
			brand,
			color,
			size,
			condition,
			tags,
			is_favorite,
			wear_count,
			last_worn,
			has_blob,
			image_url,
			last_modified,
			needs_sync,
			is_deleted,
			sync_error
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18)
		ON CONFLICT (id) DO UPDATE SET
			remote_id     = excluded.remote_id,
			name          = excluded.name,
			category      = excluded.category,
			brand         = excluded.brand,
			color         = excluded.color,
			size          = excluded.size,
			condition     = excluded.condition,
			tags          = excluded.tags,
			is_favorite   = excluded.is_favorite,
			wear_count    = excluded.wear_count,
			last_worn     = excluded.last_worn,
			has_blob      = excluded.has_blob,
			image_url     = excluded.image_url,
			last_modified = excluded.last_modified,
			needs_sync    = excluded.needs_sync,
			is_deleted    = excluded.is_deleted,
			sync_error    = excluded.sync_error
		WHERE items.last_modified = $19;`

	getItem = `SELECT ` + itemColumns + `
		FROM items
		WHERE id = $1;`

	getPendingItems = `SELECT ` + itemColumns + `
		FROM items
		WHERE needs_sync = 1 AND sync_error = ''
		ORDER BY last_modified ASC;`

	countPendingItems = `
		SELECT COUNT(*) FROM items WHERE needs_sync = 1;`

	markItemSynced = `
		UPDATE items SET
			needs_sync = 0,
			sync_error = '',
			remote_id  = CASE WHEN $1 = '' THEN remote_id ELSE $1 END
		WHERE id = $2 AND last_modified = $3;`

	setItemSyncError = `
		UPDATE items SET sync_error = $1 WHERE id = $2;`

	setItemImageURL = `
		UPDATE items SET image_url = $1 WHERE id = $2;`

	purgeItem = `
		DELETE FROM items WHERE id = $1 AND (needs_sync = 0 OR is_deleted = 1);`

	putBlob = `
		INSERT INTO item_images (item_id, data) VALUES ($1, $2)
		ON CONFLICT (item_id) DO UPDATE SET data = excluded.data;`

	getBlob = `
		SELECT data FROM item_images WHERE item_id = $1;`

	deleteBlob = `
		DELETE FROM item_images WHERE item_id = $1;`

	getMetaValue = `
		SELECT value FROM sync_meta WHERE key = $1;`

	setMetaValue = `
		INSERT INTO sync_meta (key, value) VALUES ($1, $2)
		ON CONFLICT (key) DO UPDATE SET value = excluded.value;`
)
