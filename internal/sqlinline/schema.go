package sqlinline

// QCreateSchema is idempotent and applied by `jobctl migrate`.
const QCreateSchema = `--sql 91c1db47-8910-4af4-9155-8d7e33eea29f
create table if not exists jobs (
    id text primary key,
    user_phone text not null,
    user_prompt text not null,
    enhanced_prompt text,
    status text not null default 'pending',
    video_url text,
    provider text,
    created_at timestamptz not null default now(),
    updated_at timestamptz not null default now()
);
create index if not exists jobs_user_phone_created_at_idx on jobs (user_phone, created_at desc);
create table if not exists videos (
    id bigint generated always as identity primary key,
    job_id text,
    prompt text not null,
    video_url text not null,
    provider text,
    created_at timestamptz not null default now()
);
create table if not exists integration_tokens (
    id uuid primary key,
    provider text not null unique,
    token text not null,
    properties jsonb not null default '{}'::jsonb,
    created_at timestamptz not null default now(),
    updated_at timestamptz not null default now()
);
`
