package sqlinline

const QSelectIntegrationToken = `--sql b53d20ae-fa62-48bc-a565-8af6e1eeb41a
select token
from integration_tokens
where provider = $1::text
limit 1;
`

const QListIntegrationProviders = `--sql 78fc6807-ddca-474a-a8d0-961dea0da79f
select provider, updated_at
from integration_tokens
order by provider asc;
`

const QUpsertIntegrationToken = `--sql f2027913-a769-455d-84d1-8f636f9c3eff
with incoming as (
    select
        $1::text as provider,
        $2::text as token,
        coalesce($3::jsonb, '{}'::jsonb) as properties
)
insert into integration_tokens (id, provider, token, properties, created_at, updated_at)
values (gen_random_uuid(), (select provider from incoming), (select token from incoming), (select properties from incoming), now(), now())
on conflict (provider) do update set
    token = excluded.token,
    properties = excluded.properties,
    updated_at = now();
`
