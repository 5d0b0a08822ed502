package postgres

var schema = []string{
	`CREATE TABLE IF NOT EXISTS users (
        id BIGSERIAL PRIMARY KEY,
        login TEXT UNIQUE NOT NULL,
        password_hash TEXT NOT NULL,
        role TEXT NOT NULL DEFAULT 'customer',
        created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
    )`,
	`CREATE TABLE IF NOT EXISTS products (
        id BIGSERIAL PRIMARY KEY,
        name TEXT NOT NULL,
        category TEXT NOT NULL DEFAULT '',
        unit TEXT NOT NULL DEFAULT '',
        price NUMERIC(12,2) NOT NULL,
        sale_price NUMERIC(12,2),
        stock INTEGER NOT NULL DEFAULT 0 CHECK (stock >= 0),
        state TEXT NOT NULL DEFAULT 'active',
        created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
        updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
    )`,
	`CREATE TABLE IF NOT EXISTS cart_items (
        user_id BIGINT NOT NULL REFERENCES users(id),
        product_id BIGINT NOT NULL REFERENCES products(id),
        quantity INTEGER NOT NULL CHECK (quantity > 0),
        updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
        PRIMARY KEY (user_id, product_id)
    )`,
	`CREATE TABLE IF NOT EXISTS addresses (
        id BIGSERIAL PRIMARY KEY,
        user_id BIGINT NOT NULL REFERENCES users(id),
        label TEXT NOT NULL DEFAULT '',
        full_name TEXT NOT NULL,
        phone TEXT NOT NULL DEFAULT '',
        line1 TEXT NOT NULL,
        line2 TEXT NOT NULL DEFAULT '',
        city TEXT NOT NULL,
        state TEXT NOT NULL DEFAULT '',
        postal_code TEXT NOT NULL,
        created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
    )`,
	`CREATE TABLE IF NOT EXISTS coupons (
        id BIGSERIAL PRIMARY KEY,
        code TEXT UNIQUE NOT NULL,
        description TEXT NOT NULL DEFAULT '',
        discount_type TEXT NOT NULL,
        discount_value NUMERIC(12,2) NOT NULL,
        max_discount NUMERIC(12,2),
        min_order_value NUMERIC(12,2) NOT NULL DEFAULT 0,
        valid_from TIMESTAMPTZ NOT NULL,
        valid_until TIMESTAMPTZ NOT NULL,
        usage_limit INTEGER,
        used_count INTEGER NOT NULL DEFAULT 0,
        per_user_limit INTEGER,
        categories TEXT[] NOT NULL DEFAULT '{}',
        products BIGINT[] NOT NULL DEFAULT '{}',
        excluded_products BIGINT[] NOT NULL DEFAULT '{}',
        state TEXT NOT NULL DEFAULT 'active',
        created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
    )`,
	`CREATE TABLE IF NOT EXISTS wallets (
        id BIGSERIAL PRIMARY KEY,
        user_id BIGINT UNIQUE NOT NULL REFERENCES users(id),
        balance NUMERIC(12,2) NOT NULL DEFAULT 0 CHECK (balance >= 0),
        created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
        updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
    )`,
	`CREATE TABLE IF NOT EXISTS wallet_transactions (
        id BIGSERIAL PRIMARY KEY,
        wallet_id BIGINT NOT NULL REFERENCES wallets(id),
        type TEXT NOT NULL,
        amount NUMERIC(12,2) NOT NULL,
        balance_after NUMERIC(12,2) NOT NULL,
        description TEXT NOT NULL DEFAULT '',
        reference TEXT,
        order_number TEXT NOT NULL DEFAULT '',
        metadata JSONB,
        created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
        UNIQUE (wallet_id, reference)
    )`,
	`CREATE TABLE IF NOT EXISTS orders (
        id BIGSERIAL PRIMARY KEY,
        number TEXT UNIQUE NOT NULL,
        user_id BIGINT NOT NULL REFERENCES users(id),
        items JSONB NOT NULL,
        shipping_address JSONB NOT NULL,
        payment_method TEXT NOT NULL,
        payment_status TEXT NOT NULL,
        provider_order_id TEXT NOT NULL DEFAULT '',
        provider_payment_id TEXT NOT NULL DEFAULT '',
        provider_signature TEXT NOT NULL DEFAULT '',
        paid_at TIMESTAMPTZ,
        status TEXT NOT NULL,
        delivery_partner_id BIGINT REFERENCES users(id),
        location TEXT NOT NULL DEFAULT '',
        estimated_delivery_at TIMESTAMPTZ,
        delivered_at TIMESTAMPTZ,
        price_summary JSONB NOT NULL,
        coupon_id BIGINT REFERENCES coupons(id),
        cancellation_reason TEXT NOT NULL DEFAULT '',
        rated BOOLEAN NOT NULL DEFAULT FALSE,
        created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
        updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
    )`,
	`CREATE INDEX IF NOT EXISTS idx_products_category ON products(category) WHERE state = 'active'`,
	`CREATE INDEX IF NOT EXISTS idx_addresses_user ON addresses(user_id)`,
	`CREATE INDEX IF NOT EXISTS idx_wallet_tx_wallet ON wallet_transactions(wallet_id, id DESC)`,
	`CREATE INDEX IF NOT EXISTS idx_orders_user ON orders(user_id, id DESC)`,
	`CREATE INDEX IF NOT EXISTS idx_orders_status ON orders(status, created_at)`,
	`CREATE INDEX IF NOT EXISTS idx_orders_provider_order ON orders(provider_order_id) WHERE provider_order_id <> ''`,
	`CREATE INDEX IF NOT EXISTS idx_orders_provider_payment ON orders(provider_payment_id) WHERE provider_payment_id <> ''`,
}
