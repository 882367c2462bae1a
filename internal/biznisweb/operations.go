package biznisweb

// Fixed GraphQL operation documents. These follow the final shape of the
// remote schema; variables are declared here and bound per call, never
// interpolated from user input.

const orderListQuery = `
query GetOrders($newer_from: DateTime, $status: Int, $params: OrderParams) {
  getOrderList(newer_from: $newer_from, status: $status, params: $params) {
    data {
      id
      order_num
      pur_date
      status {
        id
        name
      }
      customer {
        ... on Company {
          company_name
          email
        }
        ... on Person {
          name
          surname
          email
        }
        ... on UnauthenticatedEmail {
          email
        }
      }
      sum {
        value
        currency {
          code
        }
      }
      items {
        item_label
        quantity
        price {
          value
        }
      }
    }
    pageInfo {
      hasNextPage
      nextCursor
      totalPages
    }
  }
}`

const orderDetailQuery = `
query GetOrder($orderNum: String!) {
  getOrder(order_num: $orderNum) {
    id
    order_num
    external_ref
    pur_date
    var_symb
    last_change
    status {
      id
      name
    }
    customer {
      ... on Company {
        company_name
        company_id
        vat_id
        email
        phone
      }
      ... on Person {
        name
        surname
        email
        phone
      }
      ... on UnauthenticatedEmail {
        email
      }
    }
    invoice_address {
      street
      city
      zip
      country
    }
    delivery_address {
      street
      city
      zip
      country
    }
    items {
      item_label
      ean
      quantity
      tax_rate
      price {
        value
        formatted
      }
    }
    sum {
      value
      formatted
      currency {
        code
        symbol
      }
    }
  }
}`
